package metrics

// Config labels every instrument with the emitting service.
type Config struct {
	ServiceName string
	Environment string
}
