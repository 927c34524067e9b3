/*
Package webview implements the rendering-surface capability on an embedded
JavaScript runtime using the goja engine.

# Overview

Each player instance owns one VM hosting the remote peer script. The VM is
isolated: Node.js globals are removed, timers are no-ops, and the only host
surface the peer sees is the set of named message channels plus navigation
hooks. Host → peer communication is script injection; peer → host
communication is channel.postMessage(text), delivered to a single consumer
in emission order.

# Navigation

Every navigation, whether host-initiated or requested by the peer script,
passes the configured navigation policy. Embed pages are fetched over HTTP
behind a circuit breaker, their inline scripts executed in the VM, and a
sanitized copy of the markup kept as the rendered document.

# Security Model

Peer code cannot reach the filesystem, the network, or host memory. The
only effects it can produce are channel messages and policy-checked
navigation requests.
*/
package webview
