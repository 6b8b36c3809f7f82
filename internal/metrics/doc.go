// Package metrics records build and stage measurements.
//
// Components receive a Recorder. NoopRecorder is the default and does
// nothing, so call sites never check for nil:
//
//	b := site.NewBuilder(cfg, site.WithRecorder(metrics.NoopRecorder{}))
//
// When a metrics file is configured the CLI injects a PrometheusRecorder
// backed by a private registry and writes it out after the build with
// WriteTextfile, in the node_exporter textfile format.
package metrics
