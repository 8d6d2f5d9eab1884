package msgpack

import (
	"bytes"
	"fmt"

	vmsgpack "github.com/vmihailenco/msgpack/v5"

	"github.com/lk2023060901/danmu-msgpack/internal/json"
)

// ToJSON 将一条 MessagePack 值转换为 JSON，仅用于调试与日志输出。
// 压缩信封会先被解开；非字符串的 map 键按其文本形式输出。
func ToJSON(data []byte, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	payload, err := open(data, o.compressor)
	if err != nil {
		return nil, err
	}

	dec := vmsgpack.NewDecoder(bytes.NewReader(payload))
	dec.SetMapDecoder(func(d *vmsgpack.Decoder) (interface{}, error) {
		return d.DecodeUntypedMap()
	})
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalize(v))
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []interface{}:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	default:
		return v
	}
}
