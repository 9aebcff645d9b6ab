package preprocessing

import (
	"fmt"
	"io"
	"sort"

	"github.com/ezoic/detailviews/core/model"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// LabelEncoder はカテゴリ文字列を整数コードに変換する
// Classes[i] のコードは i。Fit はソート順でコードを割り当てる
type LabelEncoder struct {
	model.BaseEstimator

	// Classes はコード順のカテゴリ一覧
	Classes []string

	index map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
//
// Example:
//
//	enc := preprocessing.NewLabelEncoder()
//	codes, err := enc.FitTransform([]string{"Plus", "Basic", "Premium"})
//	// codes == [1 0 2]
func NewLabelEncoder() *LabelEncoder {
	enc := &LabelEncoder{}
	enc.ModelType = "LabelEncoder"
	return enc
}

// NewLabelEncoderFromClasses returns a fitted encoder that keeps the given
// code assignment. classes must not contain duplicates.
func NewLabelEncoderFromClasses(classes []string) (*LabelEncoder, error) {
	enc := NewLabelEncoder()
	enc.Classes = append([]string(nil), classes...)
	if err := enc.buildIndex(); err != nil {
		return nil, err
	}
	enc.SetFitted()
	return enc, nil
}

func (e *LabelEncoder) buildIndex() error {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		if _, dup := e.index[c]; dup {
			return dvErrors.NewValueError("LabelEncoder", fmt.Sprintf("duplicate class %q", c))
		}
		e.index[c] = i
	}
	e.recordClasses()
	return nil
}

// recordClasses はクラス一覧をハイパーパラメータに反映し Fingerprint に含める
func (e *LabelEncoder) recordClasses() {
	_ = e.SetParams(map[string]interface{}{"classes": append([]string(nil), e.Classes...)})
}

// lookup は gob 復元後などインデックスが無い場合に再構築する
func (e *LabelEncoder) lookup(value string) (int, bool) {
	if e.index == nil {
		_ = e.buildIndex()
	}
	code, ok := e.index[value]
	return code, ok
}

// Fit は値の一意な集合をソートしてコードを割り当てる
//
// パラメータ:
//   - values: カテゴリ値（空は不可）
//
// 戻り値:
//   - error: values が空の場合 ErrEmptyData
func (e *LabelEncoder) Fit(values []string) (err error) {
	defer dvErrors.Recover(&err, "LabelEncoder.Fit")
	if len(values) == 0 {
		return dvErrors.NewModelError("LabelEncoder.Fit", "empty data", dvErrors.ErrEmptyData)
	}

	e.Classes = uniqueSorted(values)
	if err := e.buildIndex(); err != nil {
		return err
	}
	e.SetFitted()
	return nil
}

// Transform maps each value to its code. An unknown value is a ValueError.
func (e *LabelEncoder) Transform(values []string) (_ []int, err error) {
	defer dvErrors.Recover(&err, "LabelEncoder.Transform")
	if !e.IsFitted() {
		return nil, dvErrors.NewNotFittedError("LabelEncoder", "Transform")
	}

	codes := make([]int, len(values))
	for i, v := range values {
		code, ok := e.lookup(v)
		if !ok {
			return nil, dvErrors.NewValueError("LabelEncoder.Transform", fmt.Sprintf("unseen category %q", v))
		}
		codes[i] = code
	}
	return codes, nil
}

// FitTransform は Fit と Transform を続けて実行する
func (e *LabelEncoder) FitTransform(values []string) (_ []int, err error) {
	defer dvErrors.Recover(&err, "LabelEncoder.FitTransform")
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// InverseTransform maps codes back to categories.
func (e *LabelEncoder) InverseTransform(codes []int) (_ []string, err error) {
	defer dvErrors.Recover(&err, "LabelEncoder.InverseTransform")
	if !e.IsFitted() {
		return nil, dvErrors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	out := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(e.Classes) {
			return nil, dvErrors.NewValueError("LabelEncoder.InverseTransform", fmt.Sprintf("code %d out of range [0, %d)", code, len(e.Classes)))
		}
		out[i] = e.Classes[code]
	}
	return out, nil
}

// Extend appends categories of values that the encoder has not seen, after
// the current maximum code, and returns them in the order they were added.
// Existing codes never change.
func (e *LabelEncoder) Extend(values []string) []string {
	if e.index == nil {
		_ = e.buildIndex()
	}
	var added []string
	for _, v := range uniqueSorted(values) {
		if _, ok := e.index[v]; ok {
			continue
		}
		e.index[v] = len(e.Classes)
		e.Classes = append(e.Classes, v)
		added = append(added, v)
	}
	if len(added) > 0 {
		e.recordClasses()
	}
	e.SetFitted()
	return added
}

// String はエンコーダーの文字列表現を返す
func (e *LabelEncoder) String() string {
	if !e.IsFitted() {
		return "LabelEncoder()"
	}
	return fmt.Sprintf("LabelEncoder(n_classes=%d)", len(e.Classes))
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// EncodingMapVersion is the format version written by EncodingMap.Save.
const EncodingMapVersion = 1

// EncodingMap holds the code assignment of every encoded column. For a
// column, the code of Columns[col][i] is i. The map is persisted as JSON so
// later runs and downstream consumers keep identical codes.
type EncodingMap struct {
	Version int                 `json:"version"`
	Columns map[string][]string `json:"columns"`
}

// NewEncodingMap returns an empty map.
func NewEncodingMap() *EncodingMap {
	return &EncodingMap{Version: EncodingMapVersion, Columns: make(map[string][]string)}
}

// Clone returns a deep copy of m.
func (m *EncodingMap) Clone() *EncodingMap {
	c := NewEncodingMap()
	c.Version = m.Version
	for col, classes := range m.Columns {
		c.Columns[col] = append([]string(nil), classes...)
	}
	return c
}

// Set records the classes of enc for column.
func (m *EncodingMap) Set(column string, enc *LabelEncoder) {
	if m.Columns == nil {
		m.Columns = make(map[string][]string)
	}
	m.Columns[column] = append(make([]string, 0, len(enc.Classes)), enc.Classes...)
}

// Encoder returns a fitted encoder for column.
func (m *EncodingMap) Encoder(column string) (*LabelEncoder, bool) {
	classes, ok := m.Columns[column]
	if !ok {
		return nil, false
	}
	enc, err := NewLabelEncoderFromClasses(classes)
	if err != nil {
		return nil, false
	}
	return enc, true
}

// Code returns the code of value in column.
func (m *EncodingMap) Code(column, value string) (int, bool) {
	for i, c := range m.Columns[column] {
		if c == value {
			return i, true
		}
	}
	return 0, false
}

// Fingerprints returns the fingerprint of each column's encoder. Two maps
// assign identical codes to a column exactly when its fingerprints match.
func (m *EncodingMap) Fingerprints() map[string]string {
	out := make(map[string]string, len(m.Columns))
	for col := range m.Columns {
		if enc, ok := m.Encoder(col); ok {
			out[col] = enc.Fingerprint()
		}
	}
	return out
}

// Validate rejects duplicate classes within a column.
func (m *EncodingMap) Validate() error {
	for col, classes := range m.Columns {
		seen := make(map[string]struct{}, len(classes))
		for _, c := range classes {
			if _, dup := seen[c]; dup {
				return dvErrors.NewValidationError("encoding map", fmt.Sprintf("duplicate class %q in column %s", c, col), c)
			}
			seen[c] = struct{}{}
		}
	}
	return nil
}

// Save writes the map as JSON to path.
func (m *EncodingMap) Save(path string) error {
	return model.SaveJSON(m, path)
}

// Write writes the map as JSON to w.
func (m *EncodingMap) Write(w io.Writer) error {
	return model.SaveJSONToWriter(m, w)
}

// LoadEncodingMap reads a map written by Save.
func LoadEncodingMap(path string) (*EncodingMap, error) {
	m := NewEncodingMap()
	if err := model.LoadJSON(m, path); err != nil {
		return nil, dvErrors.NewParseError(path, 0, "", "", err)
	}
	if err := m.Validate(); err != nil {
		return nil, dvErrors.NewParseError(path, 0, "", "", err)
	}
	return m, nil
}

// ReadEncodingMap decodes a JSON map from r.
func ReadEncodingMap(r io.Reader, name string) (*EncodingMap, error) {
	m := NewEncodingMap()
	if err := model.LoadJSONFromReader(m, r); err != nil {
		return nil, dvErrors.NewParseError(name, 0, "", "", err)
	}
	if err := m.Validate(); err != nil {
		return nil, dvErrors.NewParseError(name, 0, "", "", err)
	}
	return m, nil
}
