package animalrescue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Albertoimpl/animal-rescue/internal/domain"
	"github.com/Albertoimpl/animal-rescue/pkg/httpclient"
)

// recordingTransport records requests and replays a canned response or error.
type recordingTransport struct {
	mu       sync.Mutex
	requests []httpclient.Request
	body     []byte
	status   int
	err      error
}

func (r *recordingTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &stubResponse{url: req.URL, status: status, body: r.body}, nil
}

type stubResponse struct {
	url    string
	status int
	body   []byte
}

func (s *stubResponse) Body() []byte        { return s.body }
func (s *stubResponse) StatusCode() int     { return s.status }
func (s *stubResponse) Status() string      { return http.StatusText(s.status) }
func (s *stubResponse) Header() http.Header { return http.Header{} }
func (s *stubResponse) JSON(v any) error    { return httpclient.DecodeJSON(s.url, s.body, v) }

func TestGetAnimalsIssuesSingleGet(t *testing.T) {
	tr := &recordingTransport{body: []byte(`[{"id":1,"name":"Chocobo","color":"yellow"},{"id":2,"name":"Toby"}]`)}
	client := New("http://rescue.local", tr)

	animals, err := client.GetAnimals(context.Background())
	if err != nil {
		t.Fatalf("GetAnimals: %v", err)
	}

	if len(tr.requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(tr.requests))
	}
	req := tr.requests[0]
	if req.Method != http.MethodGet || req.URL != "http://rescue.local/animals" || req.Body != nil {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(animals) != 2 || animals[0].Name != "Chocobo" || animals[1].ID.String() != "2" {
		t.Fatalf("unexpected animals %+v", animals)
	}
	if !strings.Contains(string(animals[0].Raw), `"color":"yellow"`) {
		t.Fatalf("raw record lost unknown fields: %s", animals[0].Raw)
	}
}

func TestGetAnimalsToleratesUnexpectedFieldTypes(t *testing.T) {
	tr := &recordingTransport{body: []byte(`[{"id":"a-1"},{"id":1,"rescueDate":[2020,1,2]},{"id":2,"name":5},{"id":3,"adoptionRequests":[{"id":"x"}]}]`)}
	client := New("http://rescue.local", tr)

	animals, err := client.GetAnimals(context.Background())
	if err != nil {
		t.Fatalf("GetAnimals: %v", err)
	}
	if len(animals) != 4 {
		t.Fatalf("expected all 4 animals, got %d", len(animals))
	}
	if animals[0].ID != "a-1" || animals[3].AdoptionRequests[0].ID != "x" {
		t.Fatalf("unexpected ids %+v", animals)
	}
}

func TestSubmitAdoptionRequest(t *testing.T) {
	tr := &recordingTransport{status: http.StatusCreated}
	client := New("http://rescue.local", tr)

	resp, err := client.SubmitAdoptionRequest(context.Background(), domain.AdoptionRequestInput{
		AnimalID: "42",
		Email:    "a@b.com",
		Notes:    "n",
	})
	if err != nil {
		t.Fatalf("SubmitAdoptionRequest: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("expected raw response to be returned, got status %d", resp.StatusCode())
	}

	req := tr.requests[0]
	if req.Method != http.MethodPost || req.URL != "http://rescue.local/animals/42/adoption-requests" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Body != (domain.AdoptionRequestBody{Email: "a@b.com", Notes: "n"}) {
		t.Fatalf("unexpected body %+v", req.Body)
	}
}

func TestEditAdoptionRequest(t *testing.T) {
	tr := &recordingTransport{}
	client := New("http://rescue.local", tr)

	if _, err := client.EditAdoptionRequest(context.Background(), domain.AdoptionRequestInput{
		AnimalID:          "42",
		AdoptionRequestID: "7",
		Email:             "x",
		Notes:             "y",
	}); err != nil {
		t.Fatalf("EditAdoptionRequest: %v", err)
	}

	req := tr.requests[0]
	if req.Method != http.MethodPut || req.URL != "http://rescue.local/animals/42/adoption-requests/7" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Body != (domain.AdoptionRequestBody{Email: "x", Notes: "y"}) {
		t.Fatalf("unexpected body %+v", req.Body)
	}
}

func TestDeleteAdoptionRequestSendsNoBody(t *testing.T) {
	tr := &recordingTransport{}
	client := New("http://rescue.local", tr)

	if _, err := client.DeleteAdoptionRequest(context.Background(), domain.AdoptionRequestInput{
		AnimalID:          "42",
		AdoptionRequestID: "7",
		Email:             "ignored",
	}); err != nil {
		t.Fatalf("DeleteAdoptionRequest: %v", err)
	}

	req := tr.requests[0]
	if req.Method != http.MethodDelete || req.URL != "http://rescue.local/animals/42/adoption-requests/7" || req.Body != nil {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestGetUsername(t *testing.T) {
	cases := map[string]string{
		"plain text":  "alice",
		"json string": `"alice"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			tr := &recordingTransport{body: []byte(body)}
			client := New("http://rescue.local", tr)

			user, err := client.GetUsername(context.Background())
			if err != nil {
				t.Fatalf("GetUsername: %v", err)
			}
			if user != "alice" {
				t.Fatalf("unexpected user %q", user)
			}
			if req := tr.requests[0]; req.Method != http.MethodGet || req.URL != "http://rescue.local/whoami" {
				t.Fatalf("unexpected request %+v", req)
			}
		})
	}
}

func TestEmptyBaseURLUsesRelativePaths(t *testing.T) {
	tr := &recordingTransport{body: []byte(`[]`)}
	client := New("", tr)
	ctx := context.Background()
	in := domain.AdoptionRequestInput{AnimalID: "1", AdoptionRequestID: "2"}

	_, _ = client.GetAnimals(ctx)
	_, _ = client.SubmitAdoptionRequest(ctx, in)
	_, _ = client.EditAdoptionRequest(ctx, in)
	_, _ = client.DeleteAdoptionRequest(ctx, in)
	_, _ = client.GetUsername(ctx)

	want := []string{
		"/animals",
		"/animals/1/adoption-requests",
		"/animals/1/adoption-requests/2",
		"/animals/1/adoption-requests/2",
		"/whoami",
	}
	for i, w := range want {
		if tr.requests[i].URL != w {
			t.Fatalf("request %d: got %q want %q", i, tr.requests[i].URL, w)
		}
	}
}

func TestMissingIDsAreInterpolatedVerbatim(t *testing.T) {
	tr := &recordingTransport{}
	client := New("http://rescue.local", tr)

	_, _ = client.EditAdoptionRequest(context.Background(), domain.AdoptionRequestInput{})
	if got := tr.requests[0].URL; got != "http://rescue.local/animals//adoption-requests/" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestTransportErrorsPropagateUnchanged(t *testing.T) {
	transportErr := &httpclient.StatusError{Method: http.MethodGet, StatusCode: http.StatusInternalServerError}
	tr := &recordingTransport{err: transportErr}
	client := New("http://rescue.local", tr)
	ctx := context.Background()
	in := domain.AdoptionRequestInput{AnimalID: "1", AdoptionRequestID: "2"}

	_, err := client.GetAnimals(ctx)
	if err != error(transportErr) {
		t.Fatalf("GetAnimals: expected identical error, got %v", err)
	}
	if _, err := client.SubmitAdoptionRequest(ctx, in); err != error(transportErr) {
		t.Fatalf("SubmitAdoptionRequest: expected identical error, got %v", err)
	}
	if _, err := client.EditAdoptionRequest(ctx, in); err != error(transportErr) {
		t.Fatalf("EditAdoptionRequest: expected identical error, got %v", err)
	}
	if _, err := client.DeleteAdoptionRequest(ctx, in); err != error(transportErr) {
		t.Fatalf("DeleteAdoptionRequest: expected identical error, got %v", err)
	}
	if _, err := client.GetUsername(ctx); err != error(transportErr) {
		t.Fatalf("GetUsername: expected identical error, got %v", err)
	}
}

func TestGetAnimalsMalformedJSON(t *testing.T) {
	tr := &recordingTransport{body: []byte(`not json`)}
	client := New("http://rescue.local", tr)

	_, err := client.GetAnimals(context.Background())
	var decErr *httpclient.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
}

// TestClientAgainstBackend exercises the resty transport end to end.
func TestClientAgainstBackend(t *testing.T) {
	type call struct {
		method, path, body, cookie string
	}
	var mu sync.Mutex
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		cookie := ""
		if c, err := r.Cookie("SESSION"); err == nil {
			cookie = c.Value
		}
		mu.Lock()
		calls = append(calls, call{r.Method, r.URL.Path, strings.TrimSpace(string(raw)), cookie})
		mu.Unlock()

		switch {
		case r.URL.Path == "/animals":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[{"id":1,"name":"Chocobo","adoptionRequests":[{"id":7,"adopterName":"alice","email":"a@b.com","notes":"n"}]}]`)
		case r.URL.Path == "/whoami":
			_, _ = io.WriteString(w, "alice")
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		case r.URL.Path == "/animals/1/adoption-requests/8":
			http.Error(w, "AdoptionRequest with id 8 doesn't exist!", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	transport, err := httpclient.NewRestyClient(httpclient.Config{
		WithCredentials: true,
		SessionCookie:   &http.Cookie{Name: "SESSION", Value: "s3cr3t"},
	})
	if err != nil {
		t.Fatalf("NewRestyClient: %v", err)
	}
	client := New(srv.URL, transport)
	ctx := context.Background()

	animals, err := client.GetAnimals(ctx)
	if err != nil {
		t.Fatalf("GetAnimals: %v", err)
	}
	if len(animals) != 1 || len(animals[0].AdoptionRequests) != 1 || animals[0].AdoptionRequests[0].AdopterName != "alice" {
		t.Fatalf("unexpected animals %+v", animals)
	}

	resp, err := client.SubmitAdoptionRequest(ctx, domain.AdoptionRequestInput{AnimalID: "42", Email: "a@b.com", Notes: "n"})
	if err != nil || resp.StatusCode() != http.StatusCreated {
		t.Fatalf("SubmitAdoptionRequest: resp=%v err=%v", resp, err)
	}
	if _, err := client.EditAdoptionRequest(ctx, domain.AdoptionRequestInput{AnimalID: "42", AdoptionRequestID: "7", Email: "x", Notes: "y"}); err != nil {
		t.Fatalf("EditAdoptionRequest: %v", err)
	}
	if _, err := client.DeleteAdoptionRequest(ctx, domain.AdoptionRequestInput{AnimalID: "42", AdoptionRequestID: "7"}); err != nil {
		t.Fatalf("DeleteAdoptionRequest: %v", err)
	}
	user, err := client.GetUsername(ctx)
	if err != nil || user != "alice" {
		t.Fatalf("GetUsername: user=%q err=%v", user, err)
	}

	_, err = client.DeleteAdoptionRequest(ctx, domain.AdoptionRequestInput{AnimalID: "1", AdoptionRequestID: "8"})
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 status error, got %v", err)
	}

	want := []call{
		{http.MethodGet, "/animals", "", "s3cr3t"},
		{http.MethodPost, "/animals/42/adoption-requests", `{"email":"a@b.com","notes":"n"}`, "s3cr3t"},
		{http.MethodPut, "/animals/42/adoption-requests/7", `{"email":"x","notes":"y"}`, "s3cr3t"},
		{http.MethodDelete, "/animals/42/adoption-requests/7", "", "s3cr3t"},
		{http.MethodGet, "/whoami", "", "s3cr3t"},
		{http.MethodDelete, "/animals/1/adoption-requests/8", "", "s3cr3t"},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d: %+v", len(want), len(calls), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d: got %+v want %+v", i, calls[i], want[i])
		}
	}
}
