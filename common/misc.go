package common

import (
	"io"
	"os"
	"strings"
	"time"
)

var (
	serviceName     = "staffing"
	serviceInstance = ""

	// TimeNow is the clock of the service, replaced in tests that depend on "today".
	TimeNow = time.Now
)

func init() {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		serviceName = name
	}
	serviceInstance, _ = os.Hostname()
}

func GetServiceName() string {
	return serviceName
}

func GetServiceInstance() string {
	return serviceInstance
}

func SetServiceName(name string) {
	if name != "" {
		serviceName = name
	}
}

func StringReader(s string) io.Reader {
	return strings.NewReader(s)
}
