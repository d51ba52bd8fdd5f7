// Package delivery hands finished export payloads to the operator.
// The orchestrator only knows the Deliverer interface, so it can be
// tested without touching disk or network.
package delivery

// Deliverer persists one export payload under the given filename.
type Deliverer interface {
	Deliver(data []byte, filename string) error
}

// Multi fans one payload out to several destinations, stopping at the
// first failure.
type Multi []Deliverer

func (m Multi) Deliver(data []byte, filename string) error {
	for _, d := range m {
		if err := d.Deliver(data, filename); err != nil {
			return err
		}
	}
	return nil
}
