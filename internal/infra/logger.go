// README: zap logger construction per environment.
package infra

import "go.uber.org/zap"

// NewLogger returns a development logger when development is set, else production JSON.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
