package cache

import "fmt"

// AdapterFactory builds pools from service arguments. Every factory used to
// construct a cache provider service must implement it, so the container can
// learn the concrete pool class before anything is instantiated.
type AdapterFactory interface {
	// ProducedClass returns the class name of the pools the factory creates.
	ProducedClass() string

	// CreateAdapter builds a pool from the raw options map of a service definition.
	CreateAdapter(options map[string]any) (Pool, error)
}

// Dependency describes something a factory needs in order to produce its pool.
type Dependency struct {
	RequiredClass string
	PackageName   string
}

// AbstractAdapterFactory carries the dependency list shared by the built-in
// factories. The first dependency names the produced pool class.
type AbstractAdapterFactory struct {
	dependencies []Dependency
}

// NewAbstractAdapterFactory creates the base with the given dependencies.
func NewAbstractAdapterFactory(deps ...Dependency) AbstractAdapterFactory {
	return AbstractAdapterFactory{dependencies: deps}
}

// ProducedClass reports dependency 0's required class.
func (f AbstractAdapterFactory) ProducedClass() string {
	if len(f.dependencies) == 0 {
		return ""
	}
	return f.dependencies[0].RequiredClass
}

// Dependencies returns a copy of the dependency list.
func (f AbstractAdapterFactory) Dependencies() []Dependency {
	out := make([]Dependency, len(f.dependencies))
	copy(out, f.dependencies)
	return out
}

// MemoryAdapterFactory creates MemoryPool instances.
type MemoryAdapterFactory struct {
	AbstractAdapterFactory
}

// NewMemoryAdapterFactory creates the memory pool factory.
func NewMemoryAdapterFactory() *MemoryAdapterFactory {
	return &MemoryAdapterFactory{
		AbstractAdapterFactory: NewAbstractAdapterFactory(Dependency{
			RequiredClass: MemoryPoolClass,
			PackageName:   "github.com/hashicorp/golang-lru/v2",
		}),
	}
}

func (f *MemoryAdapterFactory) CreateAdapter(options map[string]any) (Pool, error) {
	opts, err := DecodeOptions(options)
	if err != nil {
		return nil, err
	}
	return NewMemoryPool(opts), nil
}

// RedisAdapterFactory creates RedisPool instances.
type RedisAdapterFactory struct {
	AbstractAdapterFactory
}

// NewRedisAdapterFactory creates the redis pool factory.
func NewRedisAdapterFactory() *RedisAdapterFactory {
	return &RedisAdapterFactory{
		AbstractAdapterFactory: NewAbstractAdapterFactory(Dependency{
			RequiredClass: RedisPoolClass,
			PackageName:   "github.com/redis/go-redis/v9",
		}),
	}
}

func (f *RedisAdapterFactory) CreateAdapter(options map[string]any) (Pool, error) {
	opts, err := DecodeOptions(options)
	if err != nil {
		return nil, err
	}
	if opts.Address == "" {
		return nil, fmt.Errorf("cache: redis pool requires an address")
	}
	return NewRedisPool(opts)
}

var (
	_ AdapterFactory = (*MemoryAdapterFactory)(nil)
	_ AdapterFactory = (*RedisAdapterFactory)(nil)
	_ Pool           = (*MemoryPool)(nil)
	_ Pool           = (*RedisPool)(nil)
)
