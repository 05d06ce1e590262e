package migstate

// StoreOption is a functional option for configuring a Store.
type StoreOption interface {
	apply(*storeConfig)
}

type storeConfig struct {
	observer Observer
}

type optionFunc func(*storeConfig)

func (f optionFunc) apply(c *storeConfig) {
	f(c)
}

// WithObserver attaches an observer that receives an event for every store
// operation and every raw backend operation. Use a MultiObserver to attach
// more than one.
func WithObserver(observer Observer) StoreOption {
	return optionFunc(func(c *storeConfig) {
		if observer != nil {
			c.observer = observer
		}
	})
}
