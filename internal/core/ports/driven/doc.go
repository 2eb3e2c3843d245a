// Package driven defines the outbound ports of the sync core: the
// interfaces the core needs implemented by adapters (source fetchers,
// stores, the outbound pusher). Core services depend only on these
// interfaces, never on concrete adapters.
package driven
