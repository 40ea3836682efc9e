package app

import (
	"fmt"
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	amino "github.com/tendermint/go-amino"
)

// MaxTxSize is the biggest transaction the decoder accepts.
const MaxTxSize = 1 << 20

const (
	fieldPath    = 1
	fieldPayload = 2
)

// Tx is the transport envelope of a single message. It is framed as the
// protobuf message
//
//   message Tx {
//     string path = 1;
//     bytes payload = 2;
//   }
//
// where payload is the binary encoding of the message registered for path.
type Tx struct {
	Path    string
	Payload []byte

	msg custody.Msg
}

var _ custody.Tx = (*Tx)(nil)

// GetMsg returns the decoded message. It is available only for
// transactions returned by a Codec.
func (tx *Tx) GetMsg() (custody.Msg, error) {
	if tx.msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "message not decoded")
	}
	return tx.msg, nil
}

// Marshal serializes the envelope.
func (tx *Tx) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, len(tx.Path)+len(tx.Payload)+8))
	if err := buf.EncodeVarint(uint64(fieldPath<<3 | proto.WireBytes)); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := buf.EncodeStringBytes(tx.Path); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := buf.EncodeVarint(uint64(fieldPayload<<3 | proto.WireBytes)); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := buf.EncodeRawBytes(tx.Payload); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the envelope fields. Unknown fields are skipped.
func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	for len(raw) > 0 {
		key, n := proto.DecodeVarint(raw)
		if n == 0 {
			return errors.Wrap(errors.ErrInput, "malformed field key")
		}
		raw = raw[n:]
		field, wire := key>>3, key&0x7

		switch wire {
		case proto.WireVarint:
			if _, n = proto.DecodeVarint(raw); n == 0 {
				return errors.Wrapf(errors.ErrInput, "malformed field %d", field)
			}
			raw = raw[n:]
		case proto.WireBytes:
			size, n := proto.DecodeVarint(raw)
			if n == 0 || uint64(len(raw)-n) < size {
				return errors.Wrapf(errors.ErrInput, "malformed field %d", field)
			}
			value := raw[n : n+int(size)]
			raw = raw[n+int(size):]
			switch field {
			case fieldPath:
				tx.Path = string(value)
			case fieldPayload:
				tx.Payload = append([]byte(nil), value...)
			}
		default:
			return errors.Wrapf(errors.ErrInput, "unsupported wire type %d", wire)
		}
	}
	return nil
}

// Codec knows all message types an application can route. It encodes a
// message into a transaction and decodes it back.
type Codec struct {
	cdc   *amino.Codec
	types map[string]reflect.Type
}

// NewCodec returns a codec without any message registered.
func NewCodec() *Codec {
	return &Codec{
		cdc:   amino.NewCodec(),
		types: make(map[string]reflect.Type),
	}
}

// Register makes given messages decodable. Each message must be a pointer
// to a struct and its path must be unique. Register panics otherwise.
func (c *Codec) Register(msgs ...custody.Msg) {
	for _, msg := range msgs {
		t := reflect.TypeOf(msg)
		if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			panic(fmt.Sprintf("message %T must be a pointer to a struct", msg))
		}
		if _, ok := c.types[msg.Path()]; ok {
			panic(fmt.Sprintf("message path %q registered twice", msg.Path()))
		}
		c.types[msg.Path()] = t.Elem()
	}
}

// Encode serializes msg into a transaction.
func (c *Codec) Encode(msg custody.Msg) ([]byte, error) {
	if _, ok := c.types[msg.Path()]; !ok {
		return nil, errors.Wrapf(errors.ErrType, "unknown message path %q", msg.Path())
	}
	payload, err := c.cdc.MarshalBinaryBare(msg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "marshal %T: %s", msg, err)
	}
	tx := Tx{Path: msg.Path(), Payload: payload}
	return tx.Marshal()
}

// Decode parses a transaction and the message it carries.
func (c *Codec) Decode(raw []byte) (custody.Tx, error) {
	if len(raw) > MaxTxSize {
		return nil, errors.Wrapf(errors.ErrInput, "transaction of %d bytes is too big", len(raw))
	}
	var tx Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, err
	}
	t, ok := c.types[tx.Path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "unknown message path %q", tx.Path)
	}
	msg := reflect.New(t).Interface().(custody.Msg)
	if err := c.cdc.UnmarshalBinaryBare(tx.Payload, msg); err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "unmarshal %q: %s", tx.Path, err)
	}
	if msg.Path() != tx.Path {
		return nil, errors.Wrapf(errors.ErrMsg, "path %q decoded as %q", tx.Path, msg.Path())
	}
	tx.msg = msg
	return &tx, nil
}

// NewTx wraps an already decoded message, for example when it was built
// in code instead of received over the wire.
func NewTx(msg custody.Msg) *Tx {
	return &Tx{Path: msg.Path(), msg: msg}
}
