package honeybadger

import "github.com/oasysgames/hbbft-core/acs"

// acsMultiplex owns one acs.Instance per in-flight epoch (spec.md §4.3).
type acsMultiplex struct {
	factory   acs.Factory
	instances map[Epoch]acs.Instance
}

func newAcsMultiplex(factory acs.Factory) *acsMultiplex {
	return &acsMultiplex{factory: factory, instances: make(map[Epoch]acs.Instance)}
}

func (m *acsMultiplex) instanceFor(e Epoch) acs.Instance {
	inst, ok := m.instances[e]
	if !ok {
		inst = m.factory(uint64(e))
		m.instances[e] = inst
	}
	return inst
}

// input submits our local proposal for epoch e, creating its instance if
// necessary.
func (m *acsMultiplex) input(e Epoch, data []byte) (acs.Step, error) {
	return m.instanceFor(e).Input(data)
}

// handleMessage dispatches a CommonSubset message to epoch e's instance,
// creating it if necessary.
func (m *acsMultiplex) handleMessage(e Epoch, sender NodeID, msg acs.Message) (acs.Step, error) {
	return m.instanceFor(e).HandleMessage(sender, msg)
}

// reclaim drops every instance strictly below currentEpoch that reports
// itself terminated (spec.md §4.3's reclamation rule and testable
// invariant 6).
func (m *acsMultiplex) reclaim(currentEpoch Epoch) {
	for e, inst := range m.instances {
		if e < currentEpoch && inst.Terminated() {
			delete(m.instances, e)
		}
	}
}
