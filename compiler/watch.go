package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces editor save bursts into one rebuild.
const debounce = 250 * time.Millisecond

// Watch runs one pass, then reruns the whole pipeline whenever a
// source file under the schema or queries path changes. Registry state
// is rebuilt from scratch on every pass; an incremental registry would
// have to undo merged definitions, so a full rebuild is the only way
// to keep last-definition-wins semantics correct.
//
// Analysis failures do not stop the watch; they are reported and the
// next change triggers another pass. Watch returns when ctx is
// canceled or the watcher fails.
func (c *Compiler) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, path := range []string{c.Config.Schema.Path, c.Config.Queries.Path} {
		if err := c.watchTree(w, c.resolve(path)); err != nil {
			return err
		}
	}

	c.runPass(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			// New directories must be added to the watch before files
			// inside them generate events.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = c.watchTree(w, ev.Name)
				}
			}
			timer = resetDebounce(timer, fire != nil)
			fire = timer.C
		case <-fire:
			fire = nil
			c.runPass(ctx)
		}
	}
}

// resetDebounce arms the debounce timer for another interval. pending
// reports whether an unconsumed tick may sit in the channel; it must be
// drained before Reset, or a burst of events racing an expired timer
// triggers one extra early pass.
func resetDebounce(timer *time.Timer, pending bool) *time.Timer {
	if timer == nil {
		return time.NewTimer(debounce)
	}
	if !timer.Stop() && pending {
		<-timer.C
	}
	timer.Reset(debounce)
	return timer
}

func (c *Compiler) runPass(ctx context.Context) {
	w := c.Stderr
	if w == nil {
		w = os.Stderr
	}
	if err := c.Run(ctx); err != nil {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintf(w, "wrote %s\n", c.Config.Output.Path)
}

// watchTree registers root and every directory below it.
func (c *Compiler) watchTree(w *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

// relevant filters events down to source file and directory changes.
func relevant(ev fsnotify.Event) bool {
	if ev.Op.Has(fsnotify.Chmod) {
		return false
	}
	if filepath.Ext(ev.Name) == sourceExt {
		return true
	}
	// Directory events carry no extension; creations and removals of
	// directories can move sources in or out of scope.
	return filepath.Ext(ev.Name) == ""
}
