package audio

// MaxRequestSounds bounds the sounds carried by one Request.
const MaxRequestSounds = 8

// Request is the value carried by the sound mailbox: the sounds triggered
// in one sampling tick, in pad order. A later Request replaces an unread
// one as a whole.
type Request struct {
	ids [MaxRequestSounds]SoundID
	n   uint8
}

// RequestOf builds a Request from ids.
func RequestOf(ids ...SoundID) Request {
	var r Request
	for _, id := range ids {
		r.Add(id)
	}
	return r
}

// Add appends id. It reports false when the request is full.
func (r *Request) Add(id SoundID) bool {
	if int(r.n) >= len(r.ids) {
		return false
	}
	r.ids[r.n] = id
	r.n++
	return true
}

// Len returns the number of sounds.
func (r Request) Len() int {
	return int(r.n)
}

// At returns sound i.
func (r Request) At(i int) SoundID {
	return r.ids[:r.n][i]
}
