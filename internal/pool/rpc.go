package pool

import (
	"context"
	"fmt"
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/storium/figmentator/internal/figmodel"
)

// Handshake is the shared handshake both the host process and every
// worker subprocess must present before go-plugin will talk to them. The
// magic cookie value has no meaning beyond catching an operator
// accidentally running the worker binary standalone.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FIGMENTATOR_PLUGIN",
	MagicCookieValue: "storium-figment-worker",
}

// PluginMap names the single plugin every worker subprocess serves.
var PluginMap = map[string]plugin.Plugin{
	"model": &ModelPlugin{},
}

// ModelPlugin adapts a figmodel.Model to go-plugin's net/rpc transport. It
// is used on both ends: with Impl set, plugin.Serve hosts it in the
// worker subprocess; with Impl nil, the host process uses it to obtain an
// RPC-backed figmodel.Model.
type ModelPlugin struct {
	Impl figmodel.Model
}

// Server is called in the worker subprocess to expose Impl over net/rpc.
func (p *ModelPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &modelRPCServer{impl: p.Impl}, nil
}

// Client is called in the host process to obtain a figmodel.Model backed
// by the given net/rpc client.
func (p *ModelPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &modelRPCClient{client: c}, nil
}

// modelRPCServer runs in the worker subprocess and dispatches net/rpc
// calls to the concrete model.
type modelRPCServer struct {
	impl figmodel.Model
}

func (s *modelRPCServer) Startup(args StartupArgs, reply *StartupReply) error {
	var properties map[string]interface{}
	if len(args.PropertiesJSON) > 0 {
		if err := api.Unmarshal(args.PropertiesJSON, &properties); err != nil {
			return fmt.Errorf("pool: worker unmarshaling startup properties: %w", err)
		}
	}

	ready, err := s.impl.Startup(properties)
	if err != nil {
		return err
	}
	reply.Ready = ready
	return nil
}

func (s *modelRPCServer) Shutdown(args ShutdownArgs, reply *ShutdownReply) error {
	return s.impl.Shutdown()
}

func (s *modelRPCServer) Preprocess(args PreprocessArgs, reply *PreprocessReply) error {
	var snapshot map[string]interface{}
	if err := api.Unmarshal(args.SnapshotJSON, &snapshot); err != nil {
		return fmt.Errorf("pool: worker unmarshaling story snapshot: %w", err)
	}

	var data interface{}
	if len(args.DataJSON) > 0 {
		if err := api.Unmarshal(args.DataJSON, &data); err != nil {
			return fmt.Errorf("pool: worker unmarshaling prior data: %w", err)
		}
	}

	result, err := s.impl.Preprocess(context.Background(), snapshot, data)
	if err != nil {
		return err
	}

	resultJSON, err := api.Marshal(result)
	if err != nil {
		return fmt.Errorf("pool: worker marshaling preprocess result: %w", err)
	}
	reply.DataJSON = resultJSON
	return nil
}

func (s *modelRPCServer) Figmentate(args FigmentateArgs, reply *FigmentateReply) error {
	contexts, err := fromWireBatch(args.Contexts)
	if err != nil {
		return err
	}

	results, err := s.impl.Figmentate(context.Background(), contexts)
	if err != nil {
		return err
	}

	wired, err := toWireBatch(results)
	if err != nil {
		return err
	}
	reply.Contexts = wired
	return nil
}

// modelRPCClient runs in the host process and implements figmodel.Model
// by calling across the plugin boundary.
type modelRPCClient struct {
	client *rpc.Client
}

func (c *modelRPCClient) Startup(properties map[string]interface{}) (bool, error) {
	propertiesJSON, err := api.Marshal(properties)
	if err != nil {
		return false, fmt.Errorf("pool: marshaling startup properties: %w", err)
	}

	var reply StartupReply
	if err := c.client.Call("Plugin.Startup", StartupArgs{PropertiesJSON: propertiesJSON}, &reply); err != nil {
		return false, fmt.Errorf("pool: rpc startup: %w", err)
	}
	return reply.Ready, nil
}

func (c *modelRPCClient) Shutdown() error {
	var reply ShutdownReply
	if err := c.client.Call("Plugin.Shutdown", ShutdownArgs{}, &reply); err != nil {
		return fmt.Errorf("pool: rpc shutdown: %w", err)
	}
	return nil
}

func (c *modelRPCClient) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	snapshotJSON, err := api.Marshal(storySnapshot)
	if err != nil {
		return nil, fmt.Errorf("pool: marshaling story snapshot: %w", err)
	}
	dataJSON, err := api.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("pool: marshaling prior data: %w", err)
	}

	var reply PreprocessReply
	call := c.client.Go("Plugin.Preprocess", PreprocessArgs{SnapshotJSON: snapshotJSON, DataJSON: dataJSON}, &reply, nil)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-call.Done:
		if result.Error != nil {
			return nil, fmt.Errorf("pool: rpc preprocess: %w", result.Error)
		}
	}

	var out interface{}
	if len(reply.DataJSON) > 0 {
		if err := api.Unmarshal(reply.DataJSON, &out); err != nil {
			return nil, fmt.Errorf("pool: unmarshaling preprocess result: %w", err)
		}
	}
	return out, nil
}

func (c *modelRPCClient) Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error) {
	wired, err := toWireBatch(contexts)
	if err != nil {
		return nil, err
	}

	var reply FigmentateReply
	call := c.client.Go("Plugin.Figmentate", FigmentateArgs{Contexts: wired}, &reply, nil)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-call.Done:
		if result.Error != nil {
			return nil, fmt.Errorf("pool: rpc figmentate: %w", result.Error)
		}
	}

	return fromWireBatch(reply.Contexts)
}
