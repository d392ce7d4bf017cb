// Package infra contains technical adapters such as the WSDOT feed
// client, storage backends, broker publishers and metrics exporters.
// These packages should depend only on the interfaces defined in the
// core packages.
package infra
