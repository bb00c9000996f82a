/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package correlate

const (
	nsDHCP  = `dhcp`
	nsIP    = `ip`
	nsEvent = `event`
)

// DHCPKey, IPKey, and EventKey build the three correlation key
// namespaces, separator "|", common prefix configured by the caller.
func DHCPKey(prefix, ip string) string {
	return prefix + `|` + nsDHCP + `|` + ip
}

func IPKey(prefix, ip string) string {
	return prefix + `|` + nsIP + `|` + ip
}

func EventKey(prefix, ip, signatureID string) string {
	return prefix + `|` + nsEvent + `|` + ip + `|` + signatureID
}

// EventScanPattern returns the SCAN MATCH pattern covering every event
// key recorded for ip.
func EventScanPattern(prefix, ip string) string {
	return prefix + `|` + nsEvent + `|` + ip + `|*`
}
