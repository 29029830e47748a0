package cli

const (
	FlagHome = "home"
	FlagOut  = "out"
)
