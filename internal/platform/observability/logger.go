package observability

import (
	"os"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/config"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InstrumentationScope names the otelzap bridge scope.
const InstrumentationScope = config.ServiceName + ".manual"

// NewLogger builds the service logger: a tee of the OTel bridge core (exporting
// through the global logger provider) and a JSON console core.
func NewLogger() *zap.Logger {
	otelZapCore := otelzap.NewCore(InstrumentationScope,
		otelzap.WithLoggerProvider(global.GetLoggerProvider()),
	)

	consoleEncoderConfig := zap.NewProductionEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(consoleEncoderConfig),
		zapcore.Lock(os.Stdout),
		zap.InfoLevel,
	)

	return zap.New(zapcore.NewTee(otelZapCore, consoleCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service.name", config.ServiceName)),
	)
}
