// Package skillaccount binds the account implementation's initializer
// surface. The registry passes the encoded call through verbatim as the
// post-deployment initData.
package skillaccount

import (
	"github.com/lmittmann/w3"
)

const (
	name    = "SkillAccount"
	version = "0.1.0"
)

var funcInitialize = w3.MustNewFunc(
	"initialize(bytes)", "",
)

func Name() string    { return name }
func Version() string { return version }

// EncodeInit encodes the initialize(bytes) call for a freshly deployed
// account.
func EncodeInit(data []byte) ([]byte, error) {
	return funcInitialize.EncodeArgs(data)
}
