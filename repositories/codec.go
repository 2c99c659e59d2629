package repositories

import jsoniter "github.com/json-iterator/go"

// Values stored in badger are JSON documents.
var json = jsoniter.ConfigCompatibleWithStandardLibrary
