// Package model defines the six shared collections of the jimpitan
// application and the conventions that tie them together: derived keys for
// attendance and paired warga accounts, the settings singleton, and the
// per-collection cache keys used by the offline fallback.
package model
