package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/offsync/internal/client/connectivity"
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/stretchr/testify/require"
)

var errRemoteDown = errors.New("remote down")

type sentCall struct {
	Action   models.Action
	Endpoint string
	Payload  string
}

// fakeRemote records deliveries. fail decides per endpoint whether a send
// fails; when gate is set every Send blocks until it is closed.
type fakeRemote struct {
	mu   sync.Mutex
	sent []sentCall

	fail    func(endpoint string) error
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeRemote) Ping(ctx context.Context) error { return nil }

func (f *fakeRemote) Send(ctx context.Context, action models.Action, endpoint string, payload []byte) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentCall{Action: action, Endpoint: endpoint, Payload: string(payload)})
	fail, gate, entered := f.fail, f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}
	if fail != nil {
		return fail(endpoint)
	}
	return nil
}

func (f *fakeRemote) calls() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.sent...)
}

func (f *fakeRemote) countTo(endpoint string) int {
	n := 0
	for _, c := range f.calls() {
		if c.Endpoint == endpoint {
			n++
		}
	}
	return n
}

func alwaysFail(string) error { return errRemoteDown }

type env struct {
	store     *store.Store
	repos     Repositories
	monitor   *connectivity.Monitor
	remote    *fakeRemote
	scheduler *Scheduler
	binding   *Binding
}

func newEnv(t *testing.T, online bool, remote *fakeRemote, opts ...store.Option) *env {
	t.Helper()
	ctx := context.Background()

	st := store.New(filepath.Join(t.TempDir(), "offline.db"), opts...)
	require.NoError(t, st.Initialize(ctx))
	t.Cleanup(func() { _ = st.Close() })

	if remote == nil {
		remote = &fakeRemote{}
	}
	repos := NewRepositories(st)
	mon := connectivity.NewMonitor(online, nil)
	sched := NewScheduler(remote, mon, repos, nil)
	b := NewBinding(ctx, BindingDeps{
		Store:        st,
		Repos:        repos,
		Connectivity: mon,
		Scheduler:    sched,
	})

	return &env{store: st, repos: repos, monitor: mon, remote: remote, scheduler: sched, binding: b}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
