package cli

const (
	addrEnv     = "PANTRY_ADDR"
	defaultAddr = "http://127.0.0.1:8000"
)

type todoListOptions struct {
	Skip  int
	Limit int
}

type objectGetOptions struct {
	Output string
}
