// SPDX-License-Identifier: Unlicense OR MIT

/*
Package app opens a connection to the platform windowing system and
creates windows on it.

The backend is chosen by [Open]: Wayland then X11 on Unix, Win32 on
Windows. The OWS_BACKEND environment variable or the [Backend] option
forces one.

# Windows

A Window has no native counterpart until its first Show. Events are
queued per window while [Display.CollectEvents] runs and are taken
out with [Window.RetrieveEvents], or routed to the handlers of a
[Builder] with [Window.Dispatch]:

	d, err := app.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()
	w, err := app.Builder{
		Title: "hello",
		State: system.NormalSize(800, 600),
	}.Open(d)
	...
	for !w.Closed() {
		if err := d.CollectEvents(); err != nil {
			log.Fatal(err)
		}
		w.Dispatch()
	}

Repeated resizes and pointer motion between two retrievals are
compressed into the latest one.

# Threads

A Display and its windows must be used from the goroutine that
opened it. On Windows, Open locks that goroutine to its OS thread.
Rendering happens on a separate goroutine, see package render and
[Window.CreateSurface].
*/
package app
