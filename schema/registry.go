package schema

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/morph/config"
	"gorm.io/morph/logger"
)

// Registry known metas in registration order, it owns the one time schema build
type Registry struct {
	namer  Namer
	config *config.Config
	logger logger.Interface

	metas map[string]*Meta
	order []string
	mu    sync.RWMutex
	once  sync.Once
	err   error
	state State
}

// NewRegistry nil arguments fall back to NamingStrategy{}, config.Default() and logger.Discard
func NewRegistry(namer Namer, cfg *config.Config, log logger.Interface) *Registry {
	if namer == nil {
		namer = NamingStrategy{}
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Discard
	}
	return &Registry{namer: namer, config: cfg, logger: log, metas: map[string]*Meta{}}
}

func (r *Registry) Namer() Namer             { return r.namer }
func (r *Registry) Config() *config.Config   { return r.config }
func (r *Registry) Logger() logger.Interface { return r.logger }
func (r *Registry) State() State             { return r.state }

// Register declares model name, its primary key fields and primary index are created right away
func (r *Registry) Register(name string, opts ...MetaOption) (*Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.needsBuilding("registry"); err != nil {
		return nil, err
	}

	if _, ok := r.metas[name]; ok {
		return nil, fmt.Errorf("%w: model %s is already registered", ErrDuplicateName, name)
	}

	meta := &Meta{Name: name, FieldsByName: map[string]Field{}, registry: r}
	for _, opt := range opts {
		opt(meta)
	}

	if meta.Table == "" {
		meta.Table = r.namer.TableName(name)
	}
	if len(meta.PrimaryKey) == 0 {
		meta.PrimaryKey = []string{"id"}
	}
	meta.constraints = NewConstraintHandler(name, meta.Table, r.namer)

	attrs := make([]Attribute, 0, len(meta.PrimaryKey))
	for _, key := range meta.PrimaryKey {
		field := NewAttribute("primary", Visible)
		if err := meta.AddField(key, field); err != nil {
			return nil, err
		}
		attrs = append(attrs, field.Attribute())
	}

	if _, err := meta.constraints.Create(PrimaryKind, "", attrs...); err != nil {
		return nil, err
	}

	r.metas[name] = meta
	r.order = append(r.order, name)
	return meta, nil
}

// Lookup meta by model name
func (r *Registry) Lookup(name string) (*Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if meta, ok := r.metas[name]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("%w: model %s", ErrNotFound, name)
}

// All metas in registration order
func (r *Registry) All() []*Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metas := make([]*Meta, len(r.order))
	for idx, name := range r.order {
		metas[idx] = r.metas[name]
	}
	return metas
}

// Build owns every declared field, locks every constraint handler then finalizes the metas.
// It runs once, later calls return the first result.
func (r *Registry) Build(ctx context.Context) error {
	r.once.Do(func() {
		r.err = r.build(ctx)
	})
	return r.err
}

func (r *Registry) build(ctx context.Context) error {
	metas := r.All()

	for _, meta := range metas {
		if err := meta.Err(); err != nil {
			r.logger.Error(ctx, "schema of %s is invalid: %v", meta.Name, err)
			return err
		}
	}

	// owning adds generated fields to other metas, only the declared ones are owned
	type owned struct {
		meta  *Meta
		field Field
	}

	var declared []owned
	for _, meta := range metas {
		for _, field := range meta.Fields {
			declared = append(declared, owned{meta: meta, field: field})
		}
	}

	for _, d := range declared {
		if err := d.field.own(r); err != nil {
			r.logger.Error(ctx, "owning %s.%s failed: %v", d.meta.Name, d.field.GetName(), err)
			return err
		}

		if field, ok := d.field.(*MorphToOne); ok {
			elements, _ := field.Elements()
			values := make([]string, len(elements))
			for idx, element := range elements {
				values[idx] = element.Value
			}
			r.logger.Info(ctx, "morph field %s.%s resolved to %v", d.meta.Name, field.Name, values)
		}
	}

	for _, meta := range metas {
		if err := meta.constraints.Lock(); err != nil {
			r.logger.Error(ctx, "locking constraints of %s failed: %v", meta.Name, err)
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, meta := range metas {
		meta.finalize()
	}
	r.state = Finalized
	return nil
}
