package mocks

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lewismosage/acna-gateway/internal/models"
)

// FakeBackend is an in-memory stand-in for the content REST backend. It
// serves the four entity collections under /api, speaks snake_case JSON and
// bumps updated_at on every write.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	records  map[models.EntityKind]map[int]map[string]any
	nextID   int
	clock    time.Time
	failures map[string]int
	requests []string
	tokens   []string
}

// NewFakeBackend starts a fake backend server
func NewFakeBackend() *FakeBackend {
	fb := &FakeBackend{
		records:  make(map[models.EntityKind]map[int]map[string]any),
		clock:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		failures: make(map[string]int),
	}
	for _, kind := range models.Kinds {
		fb.records[kind] = make(map[int]map[string]any)
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	return fb
}

// URL returns the API base URL of the fake backend
func (fb *FakeBackend) URL() string { return fb.Server.URL + "/api" }

// Close shuts the server down
func (fb *FakeBackend) Close() { fb.Server.Close() }

// Seed stores records for kind and returns their ids. Records without an id
// get the next free one.
func (fb *FakeBackend) Seed(kind models.EntityKind, records ...map[string]any) []int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	ids := make([]int, 0, len(records))
	for _, rec := range records {
		rec = clone(rec)
		id := asInt(rec["id"])
		if id <= 0 {
			id = fb.allocID()
		} else if id > fb.nextID {
			fb.nextID = id
		}
		rec["id"] = id
		if _, ok := rec["updated_at"]; !ok {
			rec["updated_at"] = fb.tick()
		}
		fb.records[kind][id] = rec
		ids = append(ids, id)
	}
	return ids
}

// Record returns a copy of a stored record, or nil
func (fb *FakeBackend) Record(kind models.EntityKind, id int) map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	rec, ok := fb.records[kind][id]
	if !ok {
		return nil
	}
	return clone(rec)
}

// Count returns how many records of kind are stored
func (fb *FakeBackend) Count(kind models.EntityKind) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.records[kind])
}

// Fail makes requests matching method and path (query included, e.g.
// "/case-study-submissions/?status=Published") answer with code
func (fb *FakeBackend) Fail(method, path string, code int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[method+" "+path] = code
}

// Requests returns "METHOD /path?query" for every request served
func (fb *FakeBackend) Requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.requests...)
}

// Tokens returns the bearer tokens seen, in request order
func (fb *FakeBackend) Tokens() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.tokens...)
}

func (fb *FakeBackend) allocID() int {
	fb.nextID++
	return fb.nextID
}

func (fb *FakeBackend) tick() string {
	fb.clock = fb.clock.Add(time.Second)
	return fb.clock.Format(time.RFC3339)
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	key := r.Method + " " + path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	fb.requests = append(fb.requests, key)
	fb.tokens = append(fb.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

	if code, ok := fb.failures[key]; ok {
		writeJSON(w, code, map[string]any{"detail": http.StatusText(code)})
		return
	}

	kind, rest, ok := route(path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			fb.list(w, r, kind)
		case http.MethodPost:
			fb.create(w, r, kind)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method not allowed."})
		}
		return
	}

	id, err := strconv.Atoi(parts[0])
	rec, exists := fb.records[kind][id]
	if err != nil || !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}

	if len(parts) == 2 {
		fb.action(w, r, rec, parts[1])
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rec)
	case http.MethodPatch, http.MethodPut:
		payload, err := decodePayload(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		for k, v := range payload {
			rec[k] = v
		}
		rec["updated_at"] = fb.tick()
		writeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		delete(fb.records[kind], id)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method not allowed."})
	}
}

func (fb *FakeBackend) list(w http.ResponseWriter, r *http.Request, kind models.EntityKind) {
	q := r.URL.Query()
	ids := make([]int, 0, len(fb.records[kind]))
	for id := range fb.records[kind] {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	results := make([]any, 0, len(ids))
	for _, id := range ids {
		rec := fb.records[kind][id]
		if s := q.Get("status"); s != "" && rec["status"] != s {
			continue
		}
		if c := q.Get("category"); c != "" && rec["category"] != c {
			continue
		}
		if s := q.Get("search"); s != "" {
			title, _ := rec["title"].(string)
			if !strings.Contains(strings.ToLower(title), strings.ToLower(s)) {
				continue
			}
		}
		results = append(results, rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
}

func (fb *FakeBackend) create(w http.ResponseWriter, r *http.Request, kind models.EntityKind) {
	payload, err := decodePayload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	id := fb.allocID()
	now := fb.tick()
	payload["id"] = id
	payload["created_at"] = now
	payload["updated_at"] = now
	fb.records[kind][id] = payload
	writeJSON(w, http.StatusCreated, payload)
}

func (fb *FakeBackend) action(w http.ResponseWriter, r *http.Request, rec map[string]any, action string) {
	switch action {
	case "update_status":
		payload, err := decodePayload(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		rec["status"] = payload["status"]
		rec["updated_at"] = fb.tick()
		// the real backend answers with a message, not the entity
		writeJSON(w, http.StatusOK, map[string]any{"message": "Status updated"})
	case "toggle_featured":
		featured, _ := rec["is_featured"].(bool)
		rec["is_featured"] = !featured
		rec["updated_at"] = fb.tick()
		writeJSON(w, http.StatusOK, rec)
	case "increment_view":
		rec["view_count"] = asInt(rec["view_count"]) + 1
		writeJSON(w, http.StatusOK, map[string]any{"view_count": rec["view_count"]})
	case "increment_download":
		rec["download_count"] = asInt(rec["download_count"]) + 1
		writeJSON(w, http.StatusOK, map[string]any{"download_count": rec["download_count"]})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
	}
}

// route splits a path into its collection and the remainder
func route(path string) (models.EntityKind, string, bool) {
	for _, kind := range models.Kinds {
		prefix := kind.BackendPath()
		if strings.HasPrefix(path, prefix) {
			return kind, strings.TrimPrefix(path, prefix), true
		}
		if path == strings.TrimSuffix(prefix, "/") {
			return kind, "", true
		}
	}
	return "", "", false
}

// decodePayload reads a JSON or multipart body. Multipart values that hold
// JSON arrays or objects are decoded; uploaded files are stored by name.
func decodePayload(r *http.Request) (map[string]any, error) {
	payload := map[string]any{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
		for k, vals := range r.MultipartForm.Value {
			if len(vals) == 0 {
				continue
			}
			v := vals[0]
			var decoded any
			if (strings.HasPrefix(v, "[") || strings.HasPrefix(v, "{")) && json.Unmarshal([]byte(v), &decoded) == nil {
				payload[k] = decoded
				continue
			}
			payload[k] = v
		}
		for k, files := range r.MultipartForm.File {
			if len(files) > 0 {
				payload[k] = "/media/" + files[0].Filename
			}
		}
		return payload, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func clone(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}
