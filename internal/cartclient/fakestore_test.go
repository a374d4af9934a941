package cartclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const testToken = "tok-123"

type fakeLine struct {
	ID      int
	Product string
	Size    string
	Qty     int
	price   int
}

// fakeStore はテスト用のカートストア。価格計算はここ（サーバー側）だけで行う。
type fakeStore struct {
	mu      sync.Mutex
	lines   []*fakeLine
	nextID  int
	fail    map[string]int // path prefix -> status
	forms   []string
	catalog map[string]fakeLine
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 1,
		fail:   map[string]int{},
		catalog: map[string]fakeLine{
			"7": {Product: "T-Shirt Planeta", Size: "M", price: 1250},
			"8": {Product: "Boné", price: 300},
		},
	}
}

func (s *fakeStore) add(variant string, qty int) int {
	p := s.catalog[variant]
	l := &fakeLine{ID: s.nextID, Product: p.Product, Size: p.Size, Qty: qty, price: p.price}
	s.nextID++
	s.lines = append(s.lines, l)
	return l.ID
}

func (s *fakeStore) snapshot() map[string]any {
	items := make([]map[string]any, 0, len(s.lines))
	total := 0
	for _, l := range s.lines {
		line := l.price * l.Qty
		total += line
		var size any
		if l.Size != "" {
			size = l.Size
		}
		items = append(items, map[string]any{
			"id": l.ID, "product": l.Product, "size": size, "qty": l.Qty,
			"line": strconv.Itoa(line), "image": nil,
		})
	}
	return map[string]any{"ok": true, "items": items, "count": len(items), "total": strconv.Itoa(total)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for prefix, status := range s.fail {
		if strings.HasPrefix(r.URL.Path, prefix) {
			writeJSON(w, status, map[string]any{"ok": false, "error": "falha simulada"})
			return
		}
	}

	if r.Method == http.MethodPost {
		if r.Header.Get(HeaderCSRF) != testToken {
			writeJSON(w, http.StatusForbidden, map[string]any{"ok": false, "error": "csrf"})
			return
		}
		_ = r.ParseForm()
		s.forms = append(s.forms, r.PostForm.Encode())
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/cart/modal-data/":
		writeJSON(w, http.StatusOK, s.snapshot())
	case r.URL.Path == "/cart/add/":
		qty, err := strconv.Atoi(r.PostForm.Get("quantity"))
		if err != nil {
			qty = 1
		}
		if _, ok := s.catalog[r.PostForm.Get("variant_id")]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Produto não encontrado."})
			return
		}
		s.add(r.PostForm.Get("variant_id"), qty)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "cart_count": len(s.lines)})
	case len(parts) == 4 && parts[0] == "cart" && parts[1] == "item":
		id, _ := strconv.Atoi(parts[2])
		idx := -1
		for i, l := range s.lines {
			if l.ID == id {
				idx = i
			}
		}
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "not found"})
			return
		}
		switch parts[3] {
		case "remove":
			s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
		case "update":
			q, _ := strconv.Atoi(r.PostForm.Get("quantity"))
			s.lines[idx].Qty = q
		}
		writeJSON(w, http.StatusOK, s.snapshot())
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeStore) failOn(prefix string, status int) {
	s.mu.Lock()
	s.fail[prefix] = status
	s.mu.Unlock()
}

func (s *fakeStore) lastForm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.forms) == 0 {
		return ""
	}
	return s.forms[len(s.forms)-1]
}

type alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alerts) Alert(msg string) {
	a.mu.Lock()
	a.msgs = append(a.msgs, msg)
	a.mu.Unlock()
}

func (a *alerts) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.msgs...)
}

func testEndpoints(base string) Endpoints {
	return Endpoints{
		ModalData:  base + "/cart/modal-data/",
		RemoveItem: base + "/cart/item/0/remove/",
		SetQty:     base + "/cart/item/0/update/",
	}
}

func newTestController(t *testing.T, h http.Handler, opts Options) (*Controller, *alerts, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	a := &alerts{}
	opts.Endpoints = testEndpoints(srv.URL)
	opts.HTTPClient = srv.Client()
	if opts.Tokens == nil {
		opts.Tokens = StaticToken(testToken)
	}
	opts.Notifier = a

	c, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, a, srv
}
