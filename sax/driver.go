package sax

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/skattyadz/Caja-HTML-Sanitizer/sax/html4"
)

// Schema answers the one question the driver asks about an element: how
// must its content be scanned.
type Schema interface {
	ContentModelFlags(name string) html4.Flags
}

// SchemaFunc adapts a plain lookup function to the Schema interface.
type SchemaFunc func(name string) html4.Flags

func (f SchemaFunc) ContentModelFlags(name string) html4.Flags { return f(name) }

// DefaultSchema is the HTML4 element table.
var DefaultSchema Schema = SchemaFunc(html4.Lookup)

// EventHandler is the capability set a consumer subscribes with. Every
// field is optional; a nil callback means "no subscriber" and the driver
// moves on by itself. A non-nil callback owns the parse: it receives a
// Continuation and the parse only proceeds when (and if) the handler
// invokes it. attrs is a flat ordered list of alternating attribute
// names and values, so its length is always even.
//
// param is the opaque value given to Parse, threaded unchanged through
// every call.
type EventHandler struct {
	StartDoc func(param any)
	EndDoc   func(param any)
	PCData   func(text string, param any, next *Continuation)
	CData    func(text string, param any, next *Continuation)
	RCData   func(text string, param any, next *Continuation)
	StartTag func(name string, attrs []string, param any, next *Continuation)
	EndTag   func(name string, param any, next *Continuation)
	Comment  func(text string, param any, next *Continuation)
}

// Status is the terminal state of one drive of the parse loop.
type Status int

const (
	// StatusDone means the whole stream was consumed and EndDoc fired.
	StatusDone Status = iota
	// StatusSuspended means a handler kept its Continuation without
	// invoking it; the parse resumes if and when the handler does.
	StatusSuspended
	// StatusAborted means a handler called Abort; no further events
	// will ever fire, EndDoc included.
	StatusAborted
	// StatusRunning is returned by Resume when it is called from
	// inside a handler callback: the enclosing drive loop is still on
	// the stack and carries the parse forward once the callback
	// returns.
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSuspended:
		return "suspended"
	case StatusAborted:
		return "aborted"
	case StatusRunning:
		return "running"
	}
	return "unknown"
}

var (
	// ErrStaleContinuation rejects a continuation that is no longer
	// current: either it was already invoked, or a newer continuation
	// has advanced the parse past its capture point. Allowing it to
	// run would silently regress or duplicate events.
	ErrStaleContinuation = errors.New("continuation is no longer current")
	// ErrParseAborted rejects any continuation of an aborted parse.
	ErrParseAborted = errors.New("parse was aborted")
)

// A Continuation resumes the parse from the position just past the event
// it was handed out with. It is one-shot: invoking it a second time, or
// invoking an older continuation after a newer one has advanced the
// parse, fails with ErrStaleContinuation. Never invoking it abandons the
// parse with no further events.
type Continuation struct {
	d   *driver
	pos int
	seq uint64
}

func (c *Continuation) take() error {
	if c.d.aborted {
		return errors.Wrapf(ErrParseAborted, "resume at token %d", c.pos)
	}
	if c.seq != c.d.seq {
		return errors.Wrapf(ErrStaleContinuation, "resume at token %d", c.pos)
	}
	c.d.seq++
	return nil
}

// Resume continues the parse. Called from inside a handler callback it
// returns StatusRunning immediately and lets the enclosing drive loop
// advance, which keeps deeply nested handler chains off the stack; called
// later, from anywhere in the host program, it drives the loop itself and
// returns the loop's terminal status.
func (c *Continuation) Resume() (Status, error) {
	if err := c.take(); err != nil {
		return StatusSuspended, err
	}
	if c.d.running {
		c.d.resumed = true
		c.d.resumePos = c.pos
		return StatusRunning, nil
	}
	return c.d.run(c.pos)
}

// Abort consumes the continuation and permanently stops the parse. Any
// in-flight drive loop unwinds with StatusAborted and every later Resume
// fails with ErrParseAborted.
func (c *Continuation) Abort() error {
	if err := c.take(); err != nil {
		return err
	}
	c.d.aborted = true
	return nil
}

// A Parser classifies a token stream into lexical events. The zero value
// is ready to use: it consults the HTML4 schema and the default entity
// resolver. Override the fields to inject a custom schema or a resolver
// with a different oracle.
type Parser struct {
	Schema   Schema
	Entities *Resolver
}

func NewParser() *Parser {
	return &Parser{}
}

// Parse splits htmlText and walks the resulting token stream, emitting
// one event per recognized construct. See ParseTokens for the returned
// status.
func (p *Parser) Parse(htmlText string, h *EventHandler, param any) (Status, error) {
	return p.ParseTokens(Split(htmlText), h, param)
}

// ParseTokens walks an already-split token stream. StartDoc fires before
// the first token and EndDoc after the last. The returned status is
// StatusDone for a parse the handler let run to completion,
// StatusSuspended when the handler kept a continuation for later, and
// StatusAborted when it called Abort.
func (p *Parser) ParseTokens(tokens []string, h *EventHandler, param any) (Status, error) {
	if h == nil {
		h = &EventHandler{}
	}
	schema := p.Schema
	if schema == nil {
		schema = DefaultSchema
	}
	resolver := p.Entities
	if resolver == nil {
		resolver = defaultResolver
	}
	d := &driver{
		tokens:   tokens,
		handler:  h,
		param:    param,
		schema:   schema,
		resolver: resolver,
	}
	if h.StartDoc != nil {
		h.StartDoc(param)
	}
	return d.run(0)
}

// Parse is the single-function convenience export, using the default
// schema and resolver.
func Parse(htmlText string, h *EventHandler, param any) (Status, error) {
	return NewParser().Parse(htmlText, h, param)
}

// entityStartRE decides whether the token following an "&" marker begins
// a well-formed entity-reference body. The reference itself is not
// decoded here, only validated-shaped; decoding text content is the
// consumer's unescape pass.
var entityStartRE = regexp.MustCompile(`^(#[0-9]+|#[xX][0-9a-fA-F]+|\w+);`)

// driver owns the token cursor and all per-parse state. One driver is
// created per parse invocation and threaded through every continuation.
type driver struct {
	tokens   []string
	handler  *EventHandler
	param    any
	schema   Schema
	resolver *Resolver

	// rawText, when set, is a start tag whose raw or escapable content
	// must be scanned before the next normal dispatch. It survives
	// suspension: the continuation handed out with the start-tag event
	// resumes at the scan.
	rawText *tag

	// One-shot sticky flags. Once a terminator search has failed it is
	// never repeated, which keeps pathological inputs like a run of
	// unterminated "<!--" openers linear instead of quadratic.
	noMoreEndComments bool
	noMoreGT          bool

	seq       uint64
	running   bool
	resumed   bool
	resumePos int
	aborted   bool
}

func (d *driver) token(i int) string {
	if i < len(d.tokens) {
		return d.tokens[i]
	}
	return ""
}

// deliver hands one event to its subscriber. It reports the position to
// continue from and whether the drive loop should keep going: a nil
// subscriber and a synchronous Resume both keep the loop alive, anything
// else suspends it.
func (d *driver) deliver(call func(*Continuation), next int) (int, bool) {
	if call == nil {
		return next, true
	}
	d.resumed = false
	call(&Continuation{d: d, pos: next, seq: d.seq})
	if d.resumed {
		d.resumed = false
		return d.resumePos, true
	}
	return 0, false
}

func (d *driver) textEvent(cb func(string, any, *Continuation), text string) func(*Continuation) {
	if cb == nil {
		return nil
	}
	return func(c *Continuation) { cb(text, d.param, c) }
}

func (d *driver) startTagEvent(name string, attrs []string) func(*Continuation) {
	if d.handler.StartTag == nil {
		return nil
	}
	return func(c *Continuation) { d.handler.StartTag(name, attrs, d.param, c) }
}

func (d *driver) endTagEvent(name string) func(*Continuation) {
	if d.handler.EndTag == nil {
		return nil
	}
	return func(c *Continuation) { d.handler.EndTag(name, d.param, c) }
}

// isBareIdent reports whether tok is nothing but a tag identifier
// starting with a letter; such a token followed by a bare ">" is the
// fast path that skips attribute parsing entirely.
func isBareIdent(tok string) bool {
	return tok != "" && isLetterByte(tok[0]) && tagNameLen(tok) == len(tok)
}

// run is the trampolined dispatch loop. It only ever returns by reaching
// the end of the stream, by a handler keeping its continuation, or by an
// abort; every event goes out through deliver with a continuation
// capturing the position just past it.
func (d *driver) run(pos int) (Status, error) {
	d.running = true
	defer func() { d.running = false }()

	for {
		if d.aborted {
			return StatusAborted, nil
		}

		if d.rawText != nil {
			tg := *d.rawText
			d.rawText = nil
			var ok bool
			if pos, ok = d.rawTextStep(tg); !ok {
				return d.suspended()
			}
			continue
		}

		if pos >= len(d.tokens) {
			if d.handler.EndDoc != nil {
				d.handler.EndDoc(d.param)
			}
			return StatusDone, nil
		}

		var ok bool
		switch tok := d.tokens[pos]; tok {
		case markerAmp:
			if next := d.token(pos + 1); entityStartRE.MatchString(next) {
				pos, ok = d.deliver(d.textEvent(d.handler.PCData, "&"+next), pos+2)
			} else {
				pos, ok = d.deliver(d.textEvent(d.handler.PCData, "&amp;"), pos+1)
			}
		case markerEndTagOpen:
			pos, ok = d.endTagStep(pos)
		case markerTagOpen:
			pos, ok = d.startTagStep(pos)
		case markerCommentOpen:
			pos, ok = d.commentStep(pos)
		case markerDeclOpen:
			pos, ok = d.declStep(pos, "&lt;!")
		case markerPIOpen:
			pos, ok = d.declStep(pos, "&lt;?")
		case markerGT:
			pos, ok = d.deliver(d.textEvent(d.handler.PCData, "&gt;"), pos+1)
		case "":
			pos, ok = pos+1, true
		default:
			pos, ok = d.deliver(d.textEvent(d.handler.PCData, tok), pos+1)
		}
		if !ok {
			return d.suspended()
		}
	}
}

func (d *driver) suspended() (Status, error) {
	if d.aborted {
		return StatusAborted, nil
	}
	logrus.Debug("sax: parse suspended by handler")
	return StatusSuspended, nil
}

// rawTextStep emits the content of a raw or escapable element as a single
// cdata or rcdata event and leaves the cursor on the "</" of the matching
// end tag.
func (d *driver) rawTextStep(tg tag) (int, bool) {
	text, p := d.scanRawText(tg)
	if text == "" {
		return p, true
	}
	switch {
	case tg.flags&html4.CDATA != 0:
		return d.deliver(d.textEvent(d.handler.CData, text), p)
	case tg.flags&html4.RCDATA != 0:
		return d.deliver(d.textEvent(d.handler.RCData, NormalizeRCData(text)), p)
	}
	// The driver only schedules a scan for CDATA/RCDATA content models.
	panic(errors.Errorf("sax: raw text scan for %q with content model %#x", tg.name, tg.flags))
}

func (d *driver) startTagStep(pos int) (int, bool) {
	next := d.token(pos + 1)
	switch {
	case isBareIdent(next) && d.token(pos+2) == markerGT:
		name := strings.ToLower(next)
		tg := tag{name: name, flags: d.schema.ContentModelFlags(name), next: pos + 3}
		if tg.flags&(html4.CDATA|html4.RCDATA) != 0 {
			d.rawText = &tg
		}
		return d.deliver(d.startTagEvent(name, nil), pos+3)
	case next != "" && isLetterByte(next[0]):
		tg, parsed := d.parseTagAndAttrs(pos + 1)
		if !parsed {
			// Fail closed: a tag we cannot delimit poisons the
			// rest of the stream.
			logrus.WithField("pos", pos).Debug("sax: unclosed tag, dropping remainder")
			return len(d.tokens), true
		}
		if tg.flags&(html4.CDATA|html4.RCDATA) != 0 {
			pending := tg
			d.rawText = &pending
		}
		return d.deliver(d.startTagEvent(tg.name, tg.attrs), tg.next)
	default:
		return d.deliver(d.textEvent(d.handler.PCData, "&lt;"), pos+1)
	}
}

func (d *driver) endTagStep(pos int) (int, bool) {
	next := d.token(pos + 1)
	switch {
	case isBareIdent(next) && d.token(pos+2) == markerGT:
		return d.deliver(d.endTagEvent(strings.ToLower(next)), pos+3)
	case next != "" && isLetterByte(next[0]):
		tg, parsed := d.parseTagAndAttrs(pos + 1)
		if !parsed {
			logrus.WithField("pos", pos).Debug("sax: unclosed end tag, dropping remainder")
			return len(d.tokens), true
		}
		return d.deliver(d.endTagEvent(tg.name), tg.next)
	default:
		return d.deliver(d.textEvent(d.handler.PCData, "&lt;/"), pos+1)
	}
}

// commentStep looks for a ">" token whose preceding token ends in "--".
// The search starts two tokens past the opener so "<!--" itself can never
// terminate the comment. A failed search is permanent for the rest of the
// stream, after which every comment opener degrades to literal text.
func (d *driver) commentStep(pos int) (int, bool) {
	if !d.noMoreEndComments {
		end := len(d.tokens)
		p := pos + 2
		for ; p < end; p++ {
			if d.tokens[p] == markerGT && strings.HasSuffix(d.tokens[p-1], "--") {
				break
			}
		}
		if p < end {
			text := strings.TrimSuffix(strings.Join(d.tokens[pos+1:p], ""), "--")
			if d.handler.Comment == nil {
				return p + 1, true
			}
			return d.deliver(func(c *Continuation) { d.handler.Comment(text, d.param, c) }, p+1)
		}
		d.noMoreEndComments = true
	}
	return d.deliver(d.textEvent(d.handler.PCData, "&lt;!--"), pos+1)
}

// declStep skips a "<!...>" or "<?...>" construct without emitting an
// event, or degrades to the literal text form when the construct has no
// body or the stream has run out of ">" tokens. Like commentStep, a
// failed ">" search is sticky.
func (d *driver) declStep(pos int, literal string) (int, bool) {
	next := d.token(pos + 1)
	if next != "" && isWordByte(next[0]) && !d.noMoreGT {
		end := len(d.tokens)
		p := pos + 1
		for p < end && d.tokens[p] != markerGT {
			p++
		}
		if p < end {
			return p + 1, true
		}
		d.noMoreGT = true
	}
	return d.deliver(d.textEvent(d.handler.PCData, literal), pos+1)
}
