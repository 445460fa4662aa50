// Package boot exposes the boot-command selection data the runtime
// launcher consumes: the named commands a payload offers and the
// guidance text shown when no default command is selected. It formats
// text only; launching processes is the runtime's job.
package boot
