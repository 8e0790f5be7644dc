package parsers

import "context"

// TryAdapt returns a parser that wraps `inner` and tries to convert each parsed value.
func TryAdapt[From, To any](inner SeriesParser[From], adapt func(From) (To, error)) SeriesParser[To] {
	return &adapter[From, To]{inner, adapt}
}

type adapter[From, To any] struct {
	inner SeriesParser[From]
	adapt func(From) (To, error)
}

func (a *adapter[From, To]) Position() string {
	return a.inner.Position()
}

func (a *adapter[From, To]) Next(ctx context.Context) (To, error) {
	from, err := a.inner.Next(ctx)
	if err != nil {
		var zero To

		return zero, err
	}

	res, err := a.adapt(from)
	if err != nil {
		var zero To

		return zero, err
	}

	return res, nil
}
