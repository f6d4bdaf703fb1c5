package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"resume-pdf-service/internal/config"
	"resume-pdf-service/internal/domain"
)

// fakeAcquirer records acquisition traffic without touching Chrome.
type fakeAcquirer struct {
	mu       sync.Mutex
	ctx      context.Context
	err      error
	acquires int
	discards int
}

func (f *fakeAcquirer) Acquire(ctx context.Context) (context.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	if f.err != nil {
		return nil, f.err
	}
	return f.ctx, nil
}

func (f *fakeAcquirer) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discards++
}

func TestRenderValidationPrecedesBrowserWork(t *testing.T) {
	tests := []struct {
		name string
		req  domain.RenderRequest
	}{
		{"missing url", domain.RenderRequest{SessionToken: "abc"}},
		{"missing token", domain.RenderRequest{TargetURL: "http://localhost:3000/resume"}},
		{"blank token", domain.RenderRequest{TargetURL: "http://localhost:3000/resume", SessionToken: "  "}},
		{"hostless url", domain.RenderRequest{TargetURL: "/resume/preview", SessionToken: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAcquirer{ctx: context.Background()}
			r := NewRenderer(fake, config.Load(), nil)

			_, err := r.Render(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("Render() err = %v, want ErrInvalidRequest", err)
			}
			if fake.acquires != 0 {
				t.Fatalf("browser acquired %d times for invalid request", fake.acquires)
			}
		})
	}
}

func TestRenderPropagatesLaunchFailure(t *testing.T) {
	launchErr := fmt.Errorf("%w: all strategies exhausted", domain.ErrBrowserLaunch)
	fake := &fakeAcquirer{err: launchErr}
	r := NewRenderer(fake, config.Load(), nil)

	_, err := r.Render(context.Background(), domain.RenderRequest{
		TargetURL:    "http://localhost:3000/resume",
		SessionToken: "abc",
	})
	if !errors.Is(err, domain.ErrBrowserLaunch) {
		t.Fatalf("Render() err = %v, want ErrBrowserLaunch", err)
	}
	if fake.discards != 0 {
		t.Fatalf("discards = %d, want 0 for launch failure", fake.discards)
	}
}

func TestRenderRejectsDisconnectedBrowser(t *testing.T) {
	dead, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &fakeAcquirer{ctx: dead}
	r := NewRenderer(fake, config.Load(), nil)

	_, err := r.Render(context.Background(), domain.RenderRequest{
		TargetURL:    "http://localhost:3000/resume",
		SessionToken: "abc",
	})
	if !errors.Is(err, domain.ErrBrowserUnavailable) {
		t.Fatalf("Render() err = %v, want ErrBrowserUnavailable", err)
	}
	if fake.discards != 1 {
		t.Fatalf("discards = %d, want 1 so the next request relaunches", fake.discards)
	}
}

func TestRenderDiscardsBrowserOnConnectionFailure(t *testing.T) {
	fake := &fakeAcquirer{ctx: context.Background()}
	r := NewRenderer(fake, config.Load(), nil)
	r.runTab = func(browserCtx context.Context, req domain.RenderRequest, host string) ([]byte, error) {
		return nil, classify(errors.New("read tcp 127.0.0.1:9222: ECONNRESET"), domain.ErrNavigation, req.TargetURL)
	}

	_, err := r.Render(context.Background(), domain.RenderRequest{
		TargetURL:    "http://localhost:3000/resume",
		SessionToken: "abc",
	})
	if !errors.Is(err, domain.ErrConnectionLost) {
		t.Fatalf("Render() err = %v, want ErrConnectionLost", err)
	}
	if fake.discards != 1 {
		t.Fatalf("discards = %d, want 1 after connection-class failure", fake.discards)
	}
}

func TestRenderKeepsBrowserOnPageLocalFailure(t *testing.T) {
	fake := &fakeAcquirer{ctx: context.Background()}
	r := NewRenderer(fake, config.Load(), nil)
	r.runTab = func(browserCtx context.Context, req domain.RenderRequest, host string) ([]byte, error) {
		return nil, classify(errors.New("context deadline exceeded"), domain.ErrNavigation, req.TargetURL)
	}

	_, err := r.Render(context.Background(), domain.RenderRequest{
		TargetURL:    "http://localhost:3000/resume",
		SessionToken: "abc",
	})
	if !errors.Is(err, domain.ErrNavigation) {
		t.Fatalf("Render() err = %v, want ErrNavigation", err)
	}
	if fake.discards != 0 {
		t.Fatalf("discards = %d, want 0 for page-local failure", fake.discards)
	}
}

func TestRenderReturnsPipelineResult(t *testing.T) {
	pdf := []byte("%PDF-1.4 rendered")
	fake := &fakeAcquirer{ctx: context.Background()}
	r := NewRenderer(fake, config.Load(), nil)
	r.runTab = func(browserCtx context.Context, req domain.RenderRequest, host string) ([]byte, error) {
		if host != "localhost" {
			t.Errorf("host = %q, want localhost", host)
		}
		return pdf, nil
	}

	got, err := r.Render(context.Background(), domain.RenderRequest{
		TargetURL:    "http://localhost:3000/resume",
		SessionToken: "abc",
	})
	if err != nil {
		t.Fatalf("Render() err = %v", err)
	}
	if string(got) != string(pdf) {
		t.Fatalf("Render() = %q, want pipeline bytes", got)
	}
	if fake.acquires != 1 || fake.discards != 0 {
		t.Fatalf("acquires = %d, discards = %d", fake.acquires, fake.discards)
	}
}

func TestSessionCookieParams(t *testing.T) {
	p := sessionCookieParams("isLoggedIn", "tok-123", "resume.example.com")

	if p.Name != "isLoggedIn" || p.Value != "tok-123" {
		t.Fatalf("cookie = %s=%s", p.Name, p.Value)
	}
	if p.Domain != "resume.example.com" {
		t.Fatalf("Domain = %q", p.Domain)
	}
	if p.Path != "/" {
		t.Fatalf("Path = %q", p.Path)
	}
	// Session-scoped, like the cookie the frontend itself sets.
	if p.Expires != nil {
		t.Fatalf("Expires = %v, want session cookie", p.Expires)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		pageLocal error
		want      error
	}{
		{"timeout stays navigation", errors.New("context deadline exceeded"), domain.ErrNavigation, domain.ErrNavigation},
		{"dns stays navigation", errors.New("net::ERR_NAME_NOT_RESOLVED"), domain.ErrNavigation, domain.ErrNavigation},
		{"econnreset escalates", errors.New("read tcp: ECONNRESET"), domain.ErrNavigation, domain.ErrConnectionLost},
		{"target closed escalates", errors.New("Target closed"), domain.ErrRasterization, domain.ErrConnectionLost},
		{"session closed escalates", errors.New("Session closed during print"), domain.ErrRasterization, domain.ErrConnectionLost},
		{"print failure stays local", errors.New("printing is disabled"), domain.ErrRasterization, domain.ErrRasterization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, tt.pageLocal, "http://localhost:3000/resume")
			if !errors.Is(got, tt.want) {
				t.Fatalf("classify() = %v, want wrapped %v", got, tt.want)
			}
		})
	}
}
