package logger

import "fmt"

// DriverLogger adapts the package logger to the Print/Printf/Println
// interface expected by the CQL driver.
type DriverLogger struct {
	Prefix string
}

func (d DriverLogger) Print(v ...interface{}) {
	d.Printf("%s", fmt.Sprint(v...))
}

func (d DriverLogger) Printf(format string, v ...interface{}) {
	if d.Prefix != "" {
		format = "[" + d.Prefix + "] " + format
	}
	Printf(format, v...)
}

func (d DriverLogger) Println(v ...interface{}) {
	d.Printf("%s", fmt.Sprintln(v...))
}
