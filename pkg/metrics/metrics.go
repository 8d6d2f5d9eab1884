// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// msgpackNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	msgpackNamespace = "danmu_msgpack"

	codecSubsystem = "codec"

	// 以下为当前使用的通用标签名。
	typeLabelName = "type"
	opLabelName   = "op"

	SerializeLabel   = "serialize"
	DeserializeLabel = "deserialize"
	CompressLabel    = "compress"
	DecompressLabel  = "decompress"
)

var (
	// sizeBuckets 为编码结果大小的桶划分，单位为字节。
	// 实际桶分布为：[16 64 256 1024 4096 16384 65536 262144 1.048576e+06 4.194304e+06]
	sizeBuckets = prometheus.ExponentialBuckets(16, 4, 10)

	SerializedBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: msgpackNamespace,
			Subsystem: codecSubsystem,
			Name:      "serialized_bytes",
			Help:      "size of payloads produced or consumed by the codec",
			Buckets:   sizeBuckets,
		}, []string{typeLabelName, opLabelName})

	CodecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: msgpackNamespace,
			Subsystem: codecSubsystem,
			Name:      "errors_total",
			Help:      "number of failed codec operations",
		}, []string{typeLabelName, opLabelName})

	CompressedPayloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: msgpackNamespace,
			Subsystem: codecSubsystem,
			Name:      "compressed_payloads_total",
			Help:      "number of payloads passed through the compressed envelope",
		}, []string{opLabelName})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标，只能调用一次。
func Register(r prometheus.Registerer) {
	r.MustRegister(SerializedBytes)
	r.MustRegister(CodecErrors)
	r.MustRegister(CompressedPayloads)
	metricRegisterer = r
}
