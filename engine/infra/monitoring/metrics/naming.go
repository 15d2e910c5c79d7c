package metrics

import "strings"

const prefix = "defaultdesk_"

// MetricName prefixes name with the service namespace unless it already has it.
func MetricName(name string) string {
	if strings.HasPrefix(name, prefix) {
		return name
	}
	return prefix + name
}

// MetricNameWithSubsystem builds defaultdesk_<subsystem>_<name>.
func MetricNameWithSubsystem(subsystem, name string) string {
	if strings.HasPrefix(name, prefix) {
		return name
	}
	subsystem = strings.Trim(subsystem, "_")
	switch {
	case subsystem == "":
		return MetricName(name)
	case name == "":
		return prefix + subsystem
	default:
		return prefix + subsystem + "_" + name
	}
}
