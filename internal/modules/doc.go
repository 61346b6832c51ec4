// Package modules contains the storefront's self-contained features.
//
// Each subdirectory implements module.Module: Register builds the module's
// services from the shared registry, Boot mounts its routes under /api. The
// server boots them in the order returned by server.AppModules. A module's
// bus topics live in its topics subpackage so the CLI can list them without
// starting the module.
package modules
