// Package autoload configures the global logger from the environment as a
// side effect of being imported. Blank-import it from main.
package autoload

import (
	configx "github.com/edumesh/tutor-orchestrator/pkg/config"
	logx "github.com/edumesh/tutor-orchestrator/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
