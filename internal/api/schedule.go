package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-records/internal/navigation"
	"github.com/p-n-ai/pai-records/internal/schedule"
)

const (
	defaultViewer = "default"
	dateLayout    = "2006-01-02"
)

type dayResponse struct {
	Date    string                 `json:"date"`
	Day     schedule.DayOfWeek     `json:"day"`
	IsToday bool                   `json:"is_today"`
	Entries []schedule.AgendaEntry `json:"entries"`
}

// navMessage is a client command on the week socket.
type navMessage struct {
	Action string `json:"action"`
}

func viewerOf(r *http.Request) string {
	if v := r.URL.Query().Get("viewer"); v != "" {
		return v
	}
	return defaultViewer
}

// weekGrid applies action to the viewer's week and lays out the course listing on it.
func (s *Server) weekGrid(ctx context.Context, viewer string, action navigation.Action) (schedule.WeekGrid, error) {
	week, err := s.nav.Apply(ctx, viewer, action)
	if err != nil {
		return schedule.WeekGrid{}, fmt.Errorf("navigating week: %w", err)
	}

	items, err := s.source.ScheduleItems(ctx)
	if err != nil {
		return schedule.WeekGrid{}, fmt.Errorf("loading schedule items: %w", err)
	}

	grid := s.resolver().Grid(items, week.Reference)
	if len(grid.Warnings) > 0 {
		slog.Warn("skipped malformed recurrence segments", "count", len(grid.Warnings))
	}
	return grid, nil
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	action, err := navigation.ParseAction(r.URL.Query().Get("action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := s.weekGrid(r.Context(), viewerOf(r), action)
	if err != nil {
		slog.Error("building week grid", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build week")
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	now := s.resolver().Now()
	date := now
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, now.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", v))
			return
		}
		date = d
	}

	items, err := s.source.ScheduleItems(r.Context())
	if err != nil {
		slog.Error("loading schedule items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}

	writeJSON(w, http.StatusOK, dayResponse{
		Date:    date.Format(dateLayout),
		Day:     schedule.DayOf(date),
		IsToday: s.resolver().IsToday(date),
		Entries: nonNil(s.resolver().DayAgenda(items, date)),
	})
}

// handleWeekSocket streams the viewer's week grid: once on connect, then after
// every {"action": "next"|"prev"|"today"} message.
func (s *Server) handleWeekSocket(w http.ResponseWriter, r *http.Request) {
	viewer := viewerOf(r)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("week socket accept failed", "viewer", viewer, "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	if err := s.sendWeek(ctx, conn, viewer, navigation.Current); err != nil {
		slog.Warn("week socket write failed", "viewer", viewer, "error", err)
		return
	}

	for {
		var msg navMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Warn("week socket read failed", "viewer", viewer, "error", err)
			}
			return
		}

		action, err := navigation.ParseAction(msg.Action)
		if err != nil {
			if err := wsjson.Write(ctx, conn, errorResponse{Error: err.Error()}); err != nil {
				return
			}
			continue
		}
		if err := s.sendWeek(ctx, conn, viewer, action); err != nil {
			slog.Warn("week socket write failed", "viewer", viewer, "error", err)
			return
		}
	}
}

func (s *Server) sendWeek(ctx context.Context, conn *websocket.Conn, viewer string, action navigation.Action) error {
	grid, err := s.weekGrid(ctx, viewer, action)
	if err != nil {
		slog.Error("building week grid", "viewer", viewer, "error", err)
		return wsjson.Write(ctx, conn, errorResponse{Error: "failed to build week"})
	}
	return wsjson.Write(ctx, conn, grid)
}
