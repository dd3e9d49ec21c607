package gammascout

// readLoop feeds everything the port delivers through a Framer into the
// message queue until Close sets the quit flag or a read fails. It is the
// only goroutine that reads from the port or touches the framer.
func (c *Conn) readLoop() {
	defer close(c.done)

	var framer Framer
	buf := make([]byte, c.readSize)
	for !c.quit.Load() {
		n, err := c.port.Read(buf)
		if err != nil {
			if !c.quit.Load() {
				c.readErr.Store(err)
				c.log.WithError(err).Error("serial read failed, reader stopped")
			}
			return
		}
		if n == 0 {
			continue
		}

		c.log.Debugf("<- %q", buf[:n])
		lines := framer.Feed(buf[:n])
		c.metrics.received(n, len(lines))
		c.queue.Push(lines...)
	}
}
