package apm

// emptyTraceProvider is a no-op provider used when tracing is disabled.
type emptyTraceProvider struct{}

// NewEmptyTraceProvider returns a provider that does nothing.
func NewEmptyTraceProvider() TraceProvider {
	return emptyTraceProvider{}
}

func (emptyTraceProvider) Stop() error {
	return nil
}
