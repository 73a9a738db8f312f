package core

// ChannelBinding ties one output line to one toggle channel. The pin handle
// is owned by the binding from the moment it is bound.
type ChannelBinding struct {
	Channel         int
	InitialPolarity Polarity
	ToggleOnTask    bool

	pin     OutputPin
	regs    ToggleRegisters
	enabled bool
}

// Pin returns the port pin number the channel drives.
func (b *ChannelBinding) Pin() uint8 {
	return b.pin.Number()
}

// TaskEnabled reports whether the channel currently accepts OUT tasks.
func (b *ChannelBinding) TaskEnabled() bool {
	return b.enabled
}

// SetTaskTrigger enables (1) or disables (0) the channel's task input.
func (b *ChannelBinding) SetTaskTrigger(enabled bool) {
	b.regs.SetTaskEnable(b.Channel, enabled)
	b.enabled = enabled
}

// ToggleChannels configures output lines as hardware-toggled legs of one
// H-bridge. At most one leg may start low and one may start high, so the
// bridge can never drive both legs to the same rail at power-up.
type ToggleChannels struct {
	regs  ToggleRegisters
	bound [ToggleChannelCount]*ChannelBinding
}

// NewToggleChannels wraps the toggle register block.
func NewToggleChannels(regs ToggleRegisters) *ToggleChannels {
	return &ToggleChannels{regs: regs}
}

// Bind hands pin over to channel ch. The line is driven to its initial
// level first so that the takeover produces no edge.
func (t *ToggleChannels) Bind(ch int, pin OutputPin, initial Polarity) (*ChannelBinding, error) {
	if ch < 0 || ch >= ToggleChannelCount || pin == nil {
		return nil, ErrInvalidInput
	}
	if t.bound[ch] != nil {
		return nil, ErrChannelBound
	}
	for _, b := range t.bound {
		if b != nil && b.InitialPolarity == initial {
			return nil, ErrPolarity
		}
	}

	pin.Set(initial == High)
	t.regs.ConfigureToggle(ch, pin.Number(), initial)

	b := &ChannelBinding{
		Channel:         ch,
		InitialPolarity: initial,
		ToggleOnTask:    true,
		pin:             pin,
		regs:            t.regs,
		enabled:         true,
	}
	t.bound[ch] = b
	return b, nil
}

// Bound reports whether channel ch has a binding.
func (t *ToggleChannels) Bound(ch int) bool {
	return ch >= 0 && ch < ToggleChannelCount && t.bound[ch] != nil
}

// Binding returns the binding of channel ch, or nil.
func (t *ToggleChannels) Binding(ch int) *ChannelBinding {
	if !t.Bound(ch) {
		return nil
	}
	return t.bound[ch]
}

// SetTaskTriggers gates the task input of every bound channel.
func (t *ToggleChannels) SetTaskTriggers(enabled bool) {
	for _, b := range t.bound {
		if b != nil {
			b.SetTaskTrigger(enabled)
		}
	}
}
