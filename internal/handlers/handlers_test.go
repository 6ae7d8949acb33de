package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
	"github.com/nickfox/LLMCreativeStudio/internal/session"
	"github.com/nickfox/LLMCreativeStudio/internal/store"
)

// newTestServer wires a handler onto the API's route shape, backed by a
// throwaway SQLite file and an in-memory message store.
func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()

	data, err := store.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(data.Close)

	msgs := store.NewMemoryStore()
	sessions := session.NewManager(msgs, zerolog.Nop())
	h := NewHandler(data, msgs, sessions)

	r := chi.NewRouter()
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Get("/find", h.Search)
	r.Get("/participants", h.Participants)
	r.Post("/chat", h.Chat)
	r.Get("/sessions", h.ListSessions)
	r.Route("/session/{id}", func(r chi.Router) {
		r.Post("/messages", h.AppendMessage)
		r.Get("/messages", h.Messages)
		r.Get("/debate", h.DebateStatus)
		r.Get("/context", h.Context)
		r.Delete("/", h.ClearSession)
	})
	r.Post("/projects", h.CreateProject)
	r.Get("/projects", h.ListProjects)
	r.Route("/project/{id}", func(r chi.Router) {
		r.Get("/", h.GetProject)
		r.Delete("/", h.DeleteProject)
		r.Post("/characters", h.AssignCharacter)
		r.Get("/characters", h.ListCharacters)
		r.Delete("/characters", h.ClearCharacters)
		r.Delete("/characters/{name}", h.DeleteCharacter)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, msgs
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func createProject(t *testing.T, srv *httptest.Server, name string) string {
	t.Helper()
	var resp ProjectResponse
	code := doJSON(t, "POST", srv.URL+"/projects", CreateProjectRequest{Name: name, Type: "music"}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("create project: status %d", code)
	}
	return resp.ID
}

func TestChatMentionRouting(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp ChatResponse
	code := doJSON(t, "POST", srv.URL+"/chat", ChatRequest{Message: "@a what do you think?"}, &resp)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}

	if resp.Decision.Target != "model" || resp.Decision.Model != "claude" {
		t.Errorf("decision = %+v", resp.Decision)
	}
	if resp.Decision.Body != "what do you think?" {
		t.Errorf("body = %q", resp.Decision.Body)
	}
	if len(resp.Recipients) != 1 || resp.Recipients[0] != "claude" {
		t.Errorf("recipients = %v", resp.Recipients)
	}
	if resp.SessionID == "" || resp.MessageID == "" {
		t.Errorf("ids missing: %+v", resp)
	}
	if resp.TargetLabel != "Claude" {
		t.Errorf("target label = %q", resp.TargetLabel)
	}

	// The log keeps the raw input, not the stripped body.
	if len(resp.Context) != 1 || resp.Context[0].Text != "@a what do you think?" {
		t.Errorf("context = %+v", resp.Context)
	}
}

func TestChatBroadcastFallback(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp ChatResponse
	doJSON(t, "POST", srv.URL+"/chat", ChatRequest{Message: "morning all"}, &resp)

	if resp.Decision.Target != "all" || !resp.Decision.Fallback {
		t.Errorf("decision = %+v", resp.Decision)
	}
	if len(resp.Recipients) != 3 {
		t.Errorf("recipients = %v", resp.Recipients)
	}
	if resp.TargetLabel != "" {
		t.Errorf("target label = %q on a broadcast", resp.TargetLabel)
	}
}

func TestChatDataQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp ChatResponse
	doJSON(t, "POST", srv.URL+"/chat", ChatRequest{Message: "@q release date of Let It Be"}, &resp)

	if resp.Decision.Target != "data-query" || resp.Decision.Model != "gemini" {
		t.Errorf("decision = %+v", resp.Decision)
	}
	if resp.Decision.DataQuery != "release date of Let It Be" {
		t.Errorf("data query = %q", resp.Decision.DataQuery)
	}
}

func TestChatPersonaRouting(t *testing.T) {
	srv, _ := newTestServer(t)
	projectID := createProject(t, srv, "Songwriting")

	code := doJSON(t, "POST", srv.URL+"/project/"+projectID+"/characters",
		AssignCharacterRequest{Name: "John Lennon", LLM: "claude"}, nil)
	if code != http.StatusCreated {
		t.Fatalf("assign: status %d", code)
	}

	var resp ChatResponse
	doJSON(t, "POST", srv.URL+"/chat", ChatRequest{
		Message:   "john lennon, how about a minor third here?",
		ProjectID: projectID,
	}, &resp)

	if resp.Decision.Target != "model" || resp.Decision.Model != "claude" {
		t.Errorf("decision = %+v", resp.Decision)
	}
	if resp.Decision.Body != "how about a minor third here?" {
		t.Errorf("body = %q", resp.Decision.Body)
	}
	if resp.TargetLabel != "John Lennon" {
		t.Errorf("target label = %q", resp.TargetLabel)
	}
}

func TestChatPersonaIgnoredWithoutProject(t *testing.T) {
	srv, _ := newTestServer(t)
	projectID := createProject(t, srv, "Songwriting")
	doJSON(t, "POST", srv.URL+"/project/"+projectID+"/characters",
		AssignCharacterRequest{Name: "Paul", LLM: "chatgpt"}, nil)

	// Same text without project_id stays a broadcast.
	var resp ChatResponse
	doJSON(t, "POST", srv.URL+"/chat", ChatRequest{Message: "Paul, thoughts?"}, &resp)
	if resp.Decision.Target != "all" {
		t.Errorf("decision = %+v", resp.Decision)
	}
}

func TestChatValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	if code := doJSON(t, "POST", srv.URL+"/chat", ChatRequest{Message: "   "}, nil); code != http.StatusBadRequest {
		t.Errorf("blank message: status %d", code)
	}
	if code := doJSON(t, "POST", srv.URL+"/chat", ChatRequest{Message: "hi", ProjectID: "not-a-uuid"}, nil); code != http.StatusBadRequest {
		t.Errorf("bad project id: status %d", code)
	}
	if code := doJSON(t, "POST", srv.URL+"/chat", ChatRequest{
		Message:   "hi",
		ProjectID: "00000000-0000-7000-8000-000000000000",
	}, nil); code != http.StatusNotFound {
		t.Errorf("unknown project: status %d", code)
	}
}

func TestAppendAndListMessages(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		var resp AppendMessageResponse
		code := doJSON(t, "POST", srv.URL+"/session/s1/messages", AppendMessageRequest{
			Sender: "claude",
			Body:   fmt.Sprintf("take %d", i),
		}, &resp)
		if code != http.StatusCreated {
			t.Fatalf("append: status %d", code)
		}
		if resp.ID == "" || resp.Timestamp == 0 {
			t.Fatalf("append response = %+v", resp)
		}
	}

	var list MessagesResponse
	doJSON(t, "GET", srv.URL+"/session/s1/messages", nil, &list)
	if len(list.Messages) != 3 || list.HasMore {
		t.Fatalf("list = %+v", list)
	}
	// Chronological for display.
	if list.Messages[0].Body != "take 0" || list.Messages[2].Body != "take 2" {
		t.Errorf("order = %q .. %q", list.Messages[0].Body, list.Messages[2].Body)
	}
	if list.Messages[0].DisplayName != "Claude" {
		t.Errorf("default display name = %q", list.Messages[0].DisplayName)
	}
}

func TestAppendMessageValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL + "/session/s1/messages"

	if code := doJSON(t, "POST", url, AppendMessageRequest{Sender: "skynet", Body: "hi"}, nil); code != http.StatusBadRequest {
		t.Errorf("unknown sender: status %d", code)
	}
	if code := doJSON(t, "POST", url, AppendMessageRequest{Sender: "claude"}, nil); code != http.StatusBadRequest {
		t.Errorf("empty body: status %d", code)
	}
	bad := 9
	if code := doJSON(t, "POST", url, AppendMessageRequest{Sender: "claude", Body: "x", Round: &bad}, nil); code != http.StatusBadRequest {
		t.Errorf("round out of range: status %d", code)
	}
}

func TestDebateStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var status DebateStatusResponse
	doJSON(t, "GET", srv.URL+"/session/s1/debate", nil, &status)
	if status.Active {
		t.Fatal("fresh session reports an active debate")
	}

	round := 2
	doJSON(t, "POST", srv.URL+"/session/s1/messages", AppendMessageRequest{
		Sender:         "gemini",
		Body:           "my question stands",
		Round:          &round,
		Phase:          "questions",
		WaitingForUser: true,
	}, nil)

	doJSON(t, "GET", srv.URL+"/session/s1/debate", nil, &status)
	if !status.Active || !status.WaitingForUser {
		t.Fatalf("status = %+v", status)
	}
	if status.Status.Round != "Questions" || status.Status.State != "Waiting for you" {
		t.Errorf("derived = %+v", status.Status)
	}
}

func TestContextEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 8; i++ {
		doJSON(t, "POST", srv.URL+"/session/s1/messages", AppendMessageRequest{
			Sender: "chatgpt",
			Body:   fmt.Sprintf("bar %d", i),
		}, nil)
	}

	var resp ContextResponse
	doJSON(t, "GET", srv.URL+"/session/s1/context", nil, &resp)
	if len(resp.Context) != 5 {
		t.Fatalf("window = %d, want 5", len(resp.Context))
	}
	if resp.Context[4].Text != "bar 7" {
		t.Errorf("newest entry = %q", resp.Context[4].Text)
	}

	doJSON(t, "GET", srv.URL+"/session/s1/context?n=2", nil, &resp)
	if len(resp.Context) != 2 {
		t.Fatalf("window = %d, want 2", len(resp.Context))
	}
}

func TestClearSessionEndpoint(t *testing.T) {
	srv, msgs := newTestServer(t)

	doJSON(t, "POST", srv.URL+"/session/s1/messages", AppendMessageRequest{Sender: "user", Body: "scrap this"}, nil)

	var resp ClearSessionResponse
	code := doJSON(t, "DELETE", srv.URL+"/session/s1/", nil, &resp)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if resp.SessionID == "" || resp.SessionID == "s1" {
		t.Fatalf("new session id = %q", resp.SessionID)
	}

	persisted, _ := msgs.SessionMessages(context.Background(), "s1", 10, 0)
	if len(persisted) != 0 {
		t.Fatal("old history survived clear")
	}
}

func TestProjectLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	projectID := createProject(t, srv, "White Album")

	var detail ProjectDetailResponse
	code := doJSON(t, "GET", srv.URL+"/project/"+projectID+"/", nil, &detail)
	if code != http.StatusOK || detail.Name != "White Album" {
		t.Fatalf("detail = %+v (status %d)", detail, code)
	}

	var list ProjectListResponse
	doJSON(t, "GET", srv.URL+"/projects", nil, &list)
	if list.Total != 1 {
		t.Fatalf("total = %d", list.Total)
	}

	if code := doJSON(t, "DELETE", srv.URL+"/project/"+projectID+"/", nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete: status %d", code)
	}
	if code := doJSON(t, "GET", srv.URL+"/project/"+projectID+"/", nil, nil); code != http.StatusNotFound {
		t.Fatalf("after delete: status %d", code)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	if code := doJSON(t, "POST", srv.URL+"/projects", CreateProjectRequest{Name: "  "}, nil); code != http.StatusBadRequest {
		t.Errorf("blank name: status %d", code)
	}
	if code := doJSON(t, "POST", srv.URL+"/projects", CreateProjectRequest{Name: "x", Type: "NotLower"}, nil); code != http.StatusBadRequest {
		t.Errorf("bad type: status %d", code)
	}
}

func TestCharacterReplacement(t *testing.T) {
	srv, _ := newTestServer(t)
	projectID := createProject(t, srv, "Band")
	base := srv.URL + "/project/" + projectID + "/characters"

	doJSON(t, "POST", base, AssignCharacterRequest{Name: "John", LLM: "claude"}, nil)
	doJSON(t, "POST", base, AssignCharacterRequest{Name: "Paul", LLM: "claude"}, nil)

	var list CharacterListResponse
	doJSON(t, "GET", base, nil, &list)
	if list.Total != 1 || list.Characters[0].Name != "Paul" {
		t.Fatalf("list = %+v; a model holds one persona at a time", list)
	}

	if code := doJSON(t, "POST", base, AssignCharacterRequest{Name: "Ringo", LLM: "toaster"}, nil); code != http.StatusBadRequest {
		t.Errorf("bad llm: status %d", code)
	}

	if code := doJSON(t, "DELETE", base+"/Paul", nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete character: status %d", code)
	}
	doJSON(t, "GET", base, nil, &list)
	if list.Total != 0 {
		t.Fatalf("list after delete = %+v", list)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, "POST", srv.URL+"/session/s1/messages", AppendMessageRequest{Sender: "claude", Body: "the chorus needs a key change"}, nil)
	doJSON(t, "POST", srv.URL+"/session/s1/messages", AppendMessageRequest{Sender: "gemini", Body: "verse feels rushed"}, nil)

	var resp SearchResponse
	code := doJSON(t, "GET", srv.URL+"/find?q=chorus+key", nil, &resp)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if resp.Total != 1 || resp.Results[0].Sender != "claude" {
		t.Fatalf("results = %+v", resp)
	}

	if code := doJSON(t, "GET", srv.URL+"/find", nil, nil); code != http.StatusBadRequest {
		t.Errorf("missing query: status %d", code)
	}

	// Stop words alone produce no tokens, which is an empty result, not
	// an error.
	doJSON(t, "GET", srv.URL+"/find?q=the+and", nil, &resp)
	if resp.Total != 0 {
		t.Errorf("stop-word query = %+v", resp)
	}
}

func TestParticipantsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	projectID := createProject(t, srv, "Band")
	doJSON(t, "POST", srv.URL+"/project/"+projectID+"/characters",
		AssignCharacterRequest{Name: "George", LLM: "gemini"}, nil)

	var resp ParticipantsResponse
	doJSON(t, "GET", srv.URL+"/participants?project_id="+projectID, nil, &resp)
	if len(resp.Participants) != 4 {
		t.Fatalf("participants = %+v", resp)
	}

	byIdentity := make(map[string]ParticipantInfo)
	for _, p := range resp.Participants {
		byIdentity[p.Identity] = p
	}
	if byIdentity["gemini"].DisplayName != "George" || byIdentity["gemini"].Persona != "George" {
		t.Errorf("gemini = %+v", byIdentity["gemini"])
	}
	if byIdentity["claude"].DisplayName != "Claude" {
		t.Errorf("claude = %+v", byIdentity["claude"])
	}
	if byIdentity["user"].DisplayName != "User" {
		t.Errorf("user = %+v", byIdentity["user"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, msgs := newTestServer(t)
	projectID := createProject(t, srv, "Band")
	doJSON(t, "POST", srv.URL+"/project/"+projectID+"/characters",
		AssignCharacterRequest{Name: "John", LLM: "claude"}, nil)
	msgs.AppendMessage(context.Background(),
		&models.Message{SessionID: "s1", Sender: models.IdentityUser, Body: "hi", Timestamp: 1000})
	msgs.AppendMessage(context.Background(),
		&models.Message{SessionID: "s2", Sender: models.IdentityUser, Body: "later", Timestamp: 2000})

	var resp StatsResponse
	doJSON(t, "GET", srv.URL+"/stats", nil, &resp)
	if resp.TotalProjects != 1 || resp.TotalCharacters != 1 {
		t.Errorf("stats = %+v", resp)
	}
	if resp.TotalMessages != 2 || resp.ActiveSessions != 2 {
		t.Errorf("stats = %+v", resp)
	}
	if resp.LastActivity == "" || resp.LastActivity == "no activity yet" {
		t.Errorf("last activity = %q", resp.LastActivity)
	}
	if len(resp.RecentMessages) != 2 {
		t.Fatalf("recent = %+v", resp.RecentMessages)
	}
	// Newest first, across sessions.
	if resp.RecentMessages[0].Body != "later" || resp.RecentMessages[0].SessionID != "s2" {
		t.Errorf("recent[0] = %+v", resp.RecentMessages[0])
	}
	if resp.RecentMessages[1].Body != "hi" {
		t.Errorf("recent[1] = %+v", resp.RecentMessages[1])
	}
}

func TestStatsEndpointNoActivity(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp StatsResponse
	doJSON(t, "GET", srv.URL+"/stats", nil, &resp)
	if resp.LastActivity != "no activity yet" {
		t.Errorf("last activity = %q", resp.LastActivity)
	}
	if len(resp.RecentMessages) != 0 {
		t.Errorf("recent = %+v", resp.RecentMessages)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp HealthResponse
	code := doJSON(t, "GET", srv.URL+"/health", nil, &resp)
	if code != http.StatusOK || resp.Status != "healthy" {
		t.Fatalf("health = %+v (status %d)", resp, code)
	}
	if resp.Checks["database"].Status != "pass" || resp.Checks["messages"].Status != "pass" {
		t.Errorf("checks = %+v", resp.Checks)
	}
}
