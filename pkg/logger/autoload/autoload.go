// Package autoload initializes the global logger from the LOG_* environment
// on import:
//
//	import _ "github.com/worraphat/jarvis/pkg/logger/autoload"
package autoload

import (
	configx "github.com/worraphat/jarvis/pkg/config"
	logx "github.com/worraphat/jarvis/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
