// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "encoding/json"

var _ Serializer = JSONSerializer{}

// Serializer turns values into the strings held by a KeyValueStore and back.
type Serializer interface {
	Serialize(v interface{}) (string, error)
	Deserialize(data string, v interface{}) error
}

// JSONSerializer is the default Serializer.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (JSONSerializer) Deserialize(data string, v interface{}) error {
	return json.Unmarshal([]byte(data), v)
}
