package pool

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/storium/figmentator/internal/figmodel"
)

// ProcessPool runs N copies of a model in genuinely separate OS
// processes, communicating over go-plugin's net/rpc transport. A crash
// in any one worker process only fails the batch it was handling; the
// figmentator resource that owns this pool is responsible for rebuilding
// it.
type ProcessPool struct {
	logger hclog.Logger
	cmd    string
	args   []string

	mu      sync.Mutex
	workers []*processWorker
	next    uint64
}

type processWorker struct {
	mu     sync.Mutex
	client *plugin.Client
	model  figmodel.Model
}

// NewProcessPool constructs a pool that will launch n subprocesses of
// cmd(args...), each expected to call plugin.Serve with PluginMap.
func NewProcessPool(logger hclog.Logger, n int, cmd string, args ...string) *ProcessPool {
	return &ProcessPool{
		logger:  logger,
		cmd:     cmd,
		args:    args,
		workers: make([]*processWorker, n),
	}
}

func (p *ProcessPool) pick() *processWorker {
	i := atomic.AddUint64(&p.next, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers[int(i)%len(p.workers)]
}

func (p *ProcessPool) spawn() (*processWorker, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(p.cmd, p.args...),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           p.logger,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("pool: connecting to worker: %w", err)
	}

	raw, err := rpcClient.Dispense("model")
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("pool: dispensing model: %w", err)
	}

	model, ok := raw.(figmodel.Model)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("pool: worker did not dispense a figmodel.Model")
	}

	return &processWorker{client: client, model: model}, nil
}

// Startup launches every worker subprocess and calls Startup on each: each
// one is an independent process that needs its own model state loaded.
func (p *ProcessPool) Startup(ctx context.Context, properties map[string]interface{}) (bool, error) {
	ok := true
	for i := range p.workers {
		w, err := p.spawn()
		if err != nil {
			return false, err
		}

		ready, err := w.model.Startup(properties)
		if err != nil {
			w.client.Kill()
			return false, fmt.Errorf("pool: starting worker %d: %w", i, err)
		}

		p.workers[i] = w
		ok = ok && ready
	}
	return ok, nil
}

// Shutdown calls Shutdown on every worker then kills its subprocess.
func (p *ProcessPool) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, w := range p.workers {
		if w == nil {
			continue
		}

		w.mu.Lock()
		if err := w.model.Shutdown(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pool: shutting down worker: %w", err)
		}
		w.client.Kill()
		w.mu.Unlock()
	}
	return firstErr
}

// Preprocess dispatches to one worker subprocess, chosen round-robin.
func (p *ProcessPool) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	w := p.pick()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model.Preprocess(ctx, storySnapshot, data)
}

// Figmentate dispatches one batch to one worker subprocess, chosen
// round-robin. If the worker process has exited (crashed), the call
// fails and the figmentator resource owning this pool will trigger a
// renew.
func (p *ProcessPool) Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error) {
	w := p.pick()
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client.Exited() {
		return nil, fmt.Errorf("pool: worker process exited")
	}
	return w.model.Figmentate(ctx, contexts)
}
