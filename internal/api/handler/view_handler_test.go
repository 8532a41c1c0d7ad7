package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commuteplanner/planner/internal/core/domain"
)

func TestViewHandler_Planner(t *testing.T) {
	e := newTestEcho()
	renderer := &recordingRenderer{}
	e.Renderer = renderer
	handler := NewViewHandler(ViewConfig{AppName: "Planner", SegmentIOKey: "seg"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Planner(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if renderer.name != "planner" || renderer.data["css"] != "/build/planner-app/build.css" || renderer.data["NAME"] != "Planner" {
		t.Fatalf("unexpected render: %s %v", renderer.name, renderer.data)
	}
	if _, ok := renderer.data["SEGMENTIO_KEY"]; ok {
		t.Fatalf("planner page does not load analytics")
	}
}

func TestViewHandler_Manager(t *testing.T) {
	e := newTestEcho()
	renderer := &recordingRenderer{}
	e.Renderer = renderer
	handler := NewViewHandler(ViewConfig{AppName: "Planner", SegmentIOKey: "seg"})

	req := httptest.NewRequest(http.MethodGet, "/manager", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("user", &domain.Account{Href: "k/1", Email: "ana@example.com"})

	if err := handler.Manager(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if renderer.data["js"] != "/build/manager-app/build.js" || renderer.data["SEGMENTIO_KEY"] != "seg" {
		t.Fatalf("unexpected render data: %v", renderer.data)
	}
	if user, _ := renderer.data["user"].(string); !strings.Contains(user, "ana@example.com") {
		t.Fatalf("expected serialized user, got %v", renderer.data["user"])
	}
}

func TestViewHandler_ChangePassword(t *testing.T) {
	e := newTestEcho()
	renderer := &recordingRenderer{}
	e.Renderer = renderer
	handler := NewViewHandler(ViewConfig{AppName: "Planner"})

	req := httptest.NewRequest(http.MethodGet, "/change-password/k1.secret", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("key")
	c.SetParamValues("k1.secret")

	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if renderer.name != "change-password" || renderer.data["change_password_key"] != "k1.secret" {
		t.Fatalf("unexpected render: %s %v", renderer.name, renderer.data)
	}
}
