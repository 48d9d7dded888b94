package cmd

const (
	DefaultLogFile  = "imagesize.log"
	DefaultLogLevel = "info"
)
