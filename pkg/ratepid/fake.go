package ratepid

import "github.com/flightcore/fwautotune/pkg/paramstore"

// floatHandle is a ParamF32 backed by an in-memory value and a named key
// into a paramstore.Store.
type floatHandle struct {
	store *paramstore.MemoryStore
	key   string
	value *float32
}

func (h *floatHandle) Get() float32 { return *h.value }
func (h *floatHandle) Set(v float32) { *h.value = v }
func (h *floatHandle) Save()         { h.store.WriteFloat32(h.key, *h.value) }
func (h *floatHandle) SetAndSave(v float32) {
	*h.value = v
	h.store.WriteFloat32(h.key, v)
}

// intHandle is the ParamI16 analogue of floatHandle.
type intHandle struct {
	store *paramstore.MemoryStore
	key   string
	value *int16
}

func (h *intHandle) Get() int16 { return *h.value }
func (h *intHandle) Set(v int16) { *h.value = v }
func (h *intHandle) Save()       { h.store.WriteInt16(h.key, *h.value) }
func (h *intHandle) SetAndSave(v int16) {
	*h.value = v
	h.store.WriteInt16(h.key, v)
}

// FakeRatePID is an in-memory RatePID used by the bench harness and by
// pkg/tuner's tests in place of a real flight-controller rate loop.
type FakeRatePID struct {
	ff, p, i, d, imax, tau float32
	rmaxPos, rmaxNeg       int16
	slewLimit              float32

	store *paramstore.MemoryStore

	ffHandle, pHandle, iHandle, dHandle, imaxHandle, tauHandle ParamF32
	rmaxPosHandle, rmaxNegHandle                               ParamI16
}

// NewFakeRatePID creates a FakeRatePID with the given initial gains,
// persisting writes through store (typically a fresh paramstore.MemoryStore
// so tests can assert on what was actually written).
func NewFakeRatePID(store *paramstore.MemoryStore, keyPrefix string, ff, p, i, d, imax, tau float32, rmaxPos, rmaxNeg int16, slewLimit float32) *FakeRatePID {
	r := &FakeRatePID{
		ff: ff, p: p, i: i, d: d, imax: imax, tau: tau,
		rmaxPos: rmaxPos, rmaxNeg: rmaxNeg,
		slewLimit: slewLimit,
		store:     store,
	}
	r.ffHandle = &floatHandle{store: store, key: keyPrefix + ".FF", value: &r.ff}
	r.pHandle = &floatHandle{store: store, key: keyPrefix + ".P", value: &r.p}
	r.iHandle = &floatHandle{store: store, key: keyPrefix + ".I", value: &r.i}
	r.dHandle = &floatHandle{store: store, key: keyPrefix + ".D", value: &r.d}
	r.imaxHandle = &floatHandle{store: store, key: keyPrefix + ".IMAX", value: &r.imax}
	r.tauHandle = &floatHandle{store: store, key: keyPrefix + ".TAU", value: &r.tau}
	r.rmaxPosHandle = &intHandle{store: store, key: keyPrefix + ".RMAX_POS", value: &r.rmaxPos}
	r.rmaxNegHandle = &intHandle{store: store, key: keyPrefix + ".RMAX_NEG", value: &r.rmaxNeg}
	return r
}

func (r *FakeRatePID) FF() ParamF32       { return r.ffHandle }
func (r *FakeRatePID) KP() ParamF32       { return r.pHandle }
func (r *FakeRatePID) KI() ParamF32       { return r.iHandle }
func (r *FakeRatePID) KD() ParamF32       { return r.dHandle }
func (r *FakeRatePID) KIMAX() ParamF32    { return r.imaxHandle }
func (r *FakeRatePID) TAU() ParamF32      { return r.tauHandle }
func (r *FakeRatePID) RMaxPos() ParamI16  { return r.rmaxPosHandle }
func (r *FakeRatePID) RMaxNeg() ParamI16  { return r.rmaxNegHandle }
func (r *FakeRatePID) SlewLimit() float32 { return r.slewLimit }

// SetSlewLimit lets a bench scenario or test script the slew ceiling the
// tuner observes via RatePID.SlewLimit.
func (r *FakeRatePID) SetSlewLimit(v float32) { r.slewLimit = v }
