package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"lms_backend/internal/scoring"
	"lms_backend/internal/util"
)

// parseAnswers 解析 {"<questionId>": [answerId...]}。
// 键必须是十进制数字串；只有规范写法（无前导零、在 ID 范围内）才对应题目，
// 其余数字键与外部题目一样被忽略。值为数组或 null，元素为整数或整数字符串。
func parseAnswers(raw json.RawMessage) (scoring.Submission, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, util.InvalidSubmission("answers is required")
	}
	if trimmed[0] != '{' {
		return nil, util.InvalidSubmission("answers must be an object keyed by question id")
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, util.InvalidSubmission("answers must be an object keyed by question id")
	}

	sub := make(scoring.Submission, len(entries))
	for key, value := range entries {
		qid, ok := questionKey(key)
		if !ok {
			return nil, util.InvalidSubmission("question id %q is not numeric", key)
		}
		ids, err := parseAnswerIDs(value)
		if err != nil {
			return nil, util.InvalidSubmission("question %s: %v", key, err)
		}
		if qid == 0 {
			continue
		}
		sub[qid] = scoring.NewAnswerSet(ids...)
	}
	return sub, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// questionKey 返回键对应的题目 ID。ok 为 false 表示键不是数字；
// id 为 0 表示该键不可能等于任何题目 ID 的字符串形式（含 "0"、"01" 和溢出值）。
func questionKey(key string) (id uint, ok bool) {
	if !isDigits(key) {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, true
	}
	v, err := strconv.ParseUint(key, 10, strconv.IntSize)
	if err != nil {
		return 0, true
	}
	return uint(v), true
}

// answerID 解析选项 ID。超出范围的数字按 0 处理：0 不对应任何已存储的选项，
// 所在题目因此判错，而不是报错。
func answerID(s string) (uint, bool) {
	if !isDigits(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return 0, true
	}
	return uint(v), true
}

var errSelectionShape = errors.New("selection must be a list of answer ids")

func parseAnswerIDs(raw json.RawMessage) ([]uint, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errSelectionShape
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, errSelectionShape
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case json.Number:
			s = v.String()
		case string:
			s = v
		default:
			return nil, errors.New("answer ids must be integers")
		}
		id, ok := answerID(s)
		if !ok {
			return nil, fmt.Errorf("answer id %q is not an integer", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// normalizedAnswers 以排序后的形式保存提交内容，便于回看
func normalizedAnswers(sub scoring.Submission) ([]byte, error) {
	out := make(map[uint][]uint, len(sub))
	for qid, set := range sub {
		ids := make([]uint, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[qid] = ids
	}
	return json.Marshal(out)
}
