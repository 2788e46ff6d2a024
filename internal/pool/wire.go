package pool

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/rng"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// wireContext is the over-the-wire representation of a FigmentContext.
// net/rpc serializes its arguments with gob, which can't encode an
// arbitrary interface{} (FigmentContext.Data) without the sender and
// receiver agreeing on every concrete type in advance. Instead we carry
// Data (and the whole context, for uniformity) as JSON bytes, so the pool
// boundary only ever gobs a []byte plus a few scalars.
type wireContext struct {
	Status    string
	RangeSpec string
	EntryJSON []byte
	DataJSON  []byte
}

func toWire(fc *figmodel.FigmentContext) (wireContext, error) {
	entryJSON, err := api.Marshal(fc.Entry)
	if err != nil {
		return wireContext{}, fmt.Errorf("pool: marshaling entry: %w", err)
	}

	dataJSON, err := api.Marshal(fc.Data)
	if err != nil {
		return wireContext{}, fmt.Errorf("pool: marshaling preprocessed data: %w", err)
	}

	spec := ""
	if fc.Range != nil {
		spec = fc.Range.String()
	}

	return wireContext{
		Status:    string(fc.Status),
		RangeSpec: spec,
		EntryJSON: entryJSON,
		DataJSON:  dataJSON,
	}, nil
}

func fromWire(w wireContext) (*figmodel.FigmentContext, error) {
	var entry figmodel.SceneEntry
	if err := api.Unmarshal(w.EntryJSON, &entry); err != nil {
		return nil, fmt.Errorf("pool: unmarshaling entry: %w", err)
	}

	var data interface{}
	if len(w.DataJSON) > 0 {
		if err := api.Unmarshal(w.DataJSON, &data); err != nil {
			return nil, fmt.Errorf("pool: unmarshaling preprocessed data: %w", err)
		}
	}

	var r *rng.Range
	if w.RangeSpec != "" {
		parsed, err := rng.Parse(w.RangeSpec)
		if err != nil {
			return nil, fmt.Errorf("pool: parsing range spec: %w", err)
		}
		r = &parsed
	}

	return &figmodel.FigmentContext{
		Status: figmodel.FigmentStatus(w.Status),
		Range:  r,
		Entry:  &entry,
		Data:   data,
	}, nil
}

func toWireBatch(contexts []*figmodel.FigmentContext) ([]wireContext, error) {
	wired := make([]wireContext, len(contexts))
	for i, fc := range contexts {
		w, err := toWire(fc)
		if err != nil {
			return nil, err
		}
		wired[i] = w
	}
	return wired, nil
}

func fromWireBatch(wired []wireContext) ([]*figmodel.FigmentContext, error) {
	contexts := make([]*figmodel.FigmentContext, len(wired))
	for i, w := range wired {
		fc, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		contexts[i] = fc
	}
	return contexts, nil
}

// StartupArgs/Reply, ShutdownArgs/Reply, PreprocessArgs/Reply and
// FigmentateArgs/Reply are the net/rpc call envelopes exchanged across
// the plugin boundary.
type StartupArgs struct {
	PropertiesJSON []byte
}

type StartupReply struct {
	Ready bool
}

type ShutdownArgs struct{}

type ShutdownReply struct{}

type PreprocessArgs struct {
	SnapshotJSON []byte
	DataJSON     []byte
}

type PreprocessReply struct {
	DataJSON []byte
}

type FigmentateArgs struct {
	Contexts []wireContext
}

type FigmentateReply struct {
	Contexts []wireContext
}
