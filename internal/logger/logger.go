package logger

// Logger records component-tagged structured events.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// NoOp discards every record. Installed when logging is disabled.
type NoOp struct{}

func (NoOp) Debug(component, message string, fields map[string]interface{})   {}
func (NoOp) Info(component, message string, fields map[string]interface{})    {}
func (NoOp) Warning(component, message string, fields map[string]interface{}) {}
func (NoOp) Error(component string, err error, fields map[string]interface{}) {}
