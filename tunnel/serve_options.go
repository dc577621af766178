package tunnel

import "github.com/aura-studio/bootstrap/dynamic"

type ServeOption any

type serveOptionBag struct {
	tunnel  []Option
	dynamic []dynamic.Option
}

func (b *serveOptionBag) apply(opts ...ServeOption) {
	for _, opt := range opts {
		switch o := opt.(type) {
		case Option:
			b.tunnel = append(b.tunnel, o)
		case dynamic.Option:
			b.dynamic = append(b.dynamic, o)
		}
	}
}
