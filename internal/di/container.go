// Package di implements the dependency-injection container: token-keyed
// provider recipes, singleton caching, and cycle-guarded resolution.
package di

import (
	"fmt"
	"sync"

	"github.com/fresco-dev/fresco/internal/errors"
)

// Token identifies an injectable unit within the container.
type Token = string

// RecipeKind discriminates how a provider instance is produced.
type RecipeKind int

const (
	// KindFactory builds the instance by invoking a factory whose declared
	// dependencies are resolved first. This is the "class recipe".
	KindFactory RecipeKind = iota
	// KindValue returns a pre-built static value.
	KindValue
	// KindAlias forwards resolution to another token.
	KindAlias
)

// Resolver is handed to factories so they can resolve their dependencies
// through the same cycle-guarded resolution pass.
type Resolver interface {
	Resolve(token Token) (interface{}, error)
	MustResolve(token Token) interface{}
}

// Factory creates a provider instance using the dependency resolver.
type Factory func(r Resolver) (interface{}, error)

// Recipe describes how to produce an instance for a token. Recipes are
// immutable after registration; re-registering a token installs a new
// recipe object.
type Recipe struct {
	Token     Token
	Kind      RecipeKind
	Factory   Factory
	Value     interface{}
	Target    Token // alias target
	Deps      []Token
	Transient bool // transient recipes bypass the singleton cache
}

// Provide creates a factory recipe. Deps document the constructor
// dependencies the factory resolves.
func Provide(token Token, factory Factory, deps ...Token) Recipe {
	return Recipe{Token: token, Kind: KindFactory, Factory: factory, Deps: deps}
}

// Value creates a static value recipe.
func Value(token Token, value interface{}) Recipe {
	return Recipe{Token: token, Kind: KindValue, Value: value}
}

// Alias creates a recipe that forwards to another token.
func Alias(token Token, target Token) Recipe {
	return Recipe{Token: token, Kind: KindAlias, Target: target}
}

// AsTransient returns a copy of the recipe marked non-singleton.
func (r Recipe) AsTransient() Recipe {
	r.Transient = true
	return r
}

// Container resolves and caches provider instances by token.
//
// Invariants:
//   - Register overwrites the recipe for a token without disturbing other
//     tokens.
//   - A previously-cached singleton instance survives recipe replacement;
//     replacement affects future first-time resolutions only.
//   - Resolution is synchronous and side-effect-free except for first-time
//     instantiation and caching.
type Container struct {
	recipes    map[Token]Recipe
	singletons map[Token]interface{}
	mu         sync.RWMutex
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		recipes:    make(map[Token]Recipe),
		singletons: make(map[Token]interface{}),
	}
}

// Register stores a recipe under its token, replacing any prior recipe.
func (c *Container) Register(recipe Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipes[recipe.Token] = recipe
}

// RegisterAll stores a batch of recipes in order.
func (c *Container) RegisterAll(recipes ...Recipe) {
	for _, r := range recipes {
		c.Register(r)
	}
}

// Has reports whether a recipe is registered for the token.
func (c *Container) Has(token Token) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.recipes[token]
	return ok
}

// Tokens returns all registered tokens.
func (c *Container) Tokens() []Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tokens := make([]Token, 0, len(c.recipes))
	for t := range c.recipes {
		tokens = append(tokens, t)
	}
	return tokens
}

// Resolve returns an instance for the token. Singletons are cached on first
// resolution and the identical instance is returned afterwards; transient
// recipes rebuild every call. Unregistered tokens fail with
// ProviderNotFoundError; constructor cycles fail with
// CircularDependencyError instead of recursing.
func (c *Container) Resolve(token Token) (interface{}, error) {
	res := &resolution{container: c, seen: make(map[Token]bool)}
	return res.Resolve(token)
}

// MustResolve resolves the token and panics on failure.
func (c *Container) MustResolve(token Token) interface{} {
	instance, err := c.Resolve(token)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve token %q: %v", token, err))
	}
	return instance
}

// resolution tracks one resolution call's "currently resolving" set so that
// re-entrant resolution of a token during its own construction is rejected.
type resolution struct {
	container *Container
	seen      map[Token]bool
	stack     []Token
}

var _ Resolver = (*resolution)(nil)

// Resolve implements Resolver for nested factory calls.
func (r *resolution) Resolve(token Token) (interface{}, error) {
	if r.seen[token] {
		chain := append(append([]string{}, r.stack...), token)
		return nil, &errors.CircularDependencyError{Token: token, Chain: chain}
	}

	c := r.container
	c.mu.RLock()
	recipe, ok := c.recipes[token]
	c.mu.RUnlock()

	if !ok {
		return nil, &errors.ProviderNotFoundError{Token: token}
	}

	switch recipe.Kind {
	case KindValue:
		return recipe.Value, nil

	case KindAlias:
		r.enter(token)
		defer r.leave(token)
		return r.Resolve(recipe.Target)

	default:
		if !recipe.Transient {
			c.mu.RLock()
			instance, cached := c.singletons[token]
			c.mu.RUnlock()
			if cached {
				return instance, nil
			}
		}

		if recipe.Factory == nil {
			return nil, fmt.Errorf("recipe for token %q has no factory", token)
		}

		r.enter(token)
		instance, err := recipe.Factory(r)
		r.leave(token)
		if err != nil {
			return nil, fmt.Errorf("failed to construct provider %q: %w", token, err)
		}

		if !recipe.Transient {
			c.mu.Lock()
			// Another interleaved resolution may have cached first; keep
			// the existing instance so the singleton identity holds.
			if existing, cached := c.singletons[token]; cached {
				c.mu.Unlock()
				return existing, nil
			}
			c.singletons[token] = instance
			c.mu.Unlock()
		}

		return instance, nil
	}
}

// MustResolve implements Resolver.
func (r *resolution) MustResolve(token Token) interface{} {
	instance, err := r.Resolve(token)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve token %q: %v", token, err))
	}
	return instance
}

func (r *resolution) enter(token Token) {
	r.seen[token] = true
	r.stack = append(r.stack, token)
}

func (r *resolution) leave(token Token) {
	delete(r.seen, token)
	r.stack = r.stack[:len(r.stack)-1]
}
