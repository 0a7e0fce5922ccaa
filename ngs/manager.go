package ngs

import (
	"context"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/ngs/libmanager"
	"github.com/grailbio/ngs/native"
)

// Manager loads the NGS libraries on first use and opens objects with them.
// Thread safe.
type Manager struct {
	opts libmanager.Opts

	mu     sync.Mutex
	engine native.Library // kept once loaded, even if the sdk fails
	rt     *native.Runtime
}

// NewManager returns a manager that resolves the libraries with opts.
func NewManager(opts libmanager.Opts) *Manager {
	return &Manager{opts: opts}
}

// NewManagerForRuntime returns a manager over already bound libraries.
func NewManagerForRuntime(rt *native.Runtime) *Manager {
	return &Manager{rt: rt}
}

// Default is the manager used by OpenReadCollection.
var Default = NewManager(libmanager.DefaultOpts)

// Runtime returns the bound libraries, loading them on the first successful
// call. Later calls return the same runtime without doing any work.
func (m *Manager) Runtime(ctx context.Context) (*native.Runtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rt != nil {
		return m.rt, nil
	}
	r := libmanager.New(m.opts)
	if m.engine == nil {
		engine, err := r.Load(ctx, native.Engine.Name())
		if err != nil {
			return nil, err
		}
		m.engine = engine
	}
	sdk, err := r.Load(ctx, native.SDK.Name())
	if err != nil {
		return nil, err
	}
	rt, err := native.NewRuntime(m.engine, sdk)
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("ngs: using %s and %s", m.engine.Path(), sdk.Path())
	m.rt = rt
	return rt, nil
}

// OpenReadCollection opens an accession, path or URL.
func (m *Manager) OpenReadCollection(ctx context.Context, spec string) (*ReadCollection, error) {
	rt, err := m.Runtime(ctx)
	if err != nil {
		return nil, err
	}
	h, err := rt.MakeReadCollection(spec)
	if err != nil {
		return nil, err
	}
	return &ReadCollection{newObject(rt, h)}, nil
}

// OpenReferenceSequence opens a reference sequence by accession. Engines
// before NGS 1.3 do not support it.
func (m *Manager) OpenReferenceSequence(ctx context.Context, spec string) (*ReferenceSequence, error) {
	rt, err := m.Runtime(ctx)
	if err != nil {
		return nil, err
	}
	h, err := rt.MakeReferenceSequence(spec)
	if err != nil {
		return nil, err
	}
	return &ReferenceSequence{newObject(rt, h)}, nil
}

// OpenReadCollection opens spec with the Default manager.
func OpenReadCollection(spec string) (*ReadCollection, error) {
	return Default.OpenReadCollection(context.Background(), spec)
}

// OpenReferenceSequence opens spec with the Default manager.
func OpenReferenceSequence(spec string) (*ReferenceSequence, error) {
	return Default.OpenReferenceSequence(context.Background(), spec)
}
