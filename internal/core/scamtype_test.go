package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferScamType(t *testing.T) {
	tests := []struct {
		name    string
		reasons []string
		want    ScamType
	}{
		{"no reasons", nil, ScamTypeUnknown},
		{"unrelated reasons", []string{"평범한 문장"}, ScamTypeUnknown},
		{"voice phishing cue", []string{"위험 키워드 '검찰청' 감지 (심각도: 심각)"}, ScamTypeVoicePhishing},
		{"safe account cue", []string{"위험 키워드 '안전계좌' 감지 (심각도: 심각)"}, ScamTypeVoicePhishing},
		{"investment cue", []string{"위험 키워드 '투자' 감지 (심각도: 높음)"}, ScamTypeInvestment},
		{"used trade cue", []string{"위험 키워드 '중고거래' 감지 (심각도: 높음)"}, ScamTypeUsedTrade},
		{"url cue", []string{"의심스러운 URL 감지: http://bit.ly/a (단축 URL)"}, ScamTypePhishing},
		{"loan cue", []string{"위험 키워드 '대출' 감지 (심각도: 높음)"}, ScamTypeLoan},
		{"voice outranks generic phishing", []string{"보이스피싱 신고 3건 포함"}, ScamTypeVoicePhishing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferScamType(tt.reasons))
		})
	}
}

func TestMapScamTypeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  ScamType
	}{
		{"", ScamTypeUnknown},
		{"investment", ScamTypeInvestment},
		{"투자 사기", ScamTypeInvestment},
		{"used trade", ScamTypeUsedTrade},
		{"중고거래 사기", ScamTypeUsedTrade},
		{"phishing", ScamTypePhishing},
		{"voice phishing", ScamTypeVoicePhishing},
		{"보이스피싱", ScamTypeVoicePhishing},
		{"IMPERSONATION", ScamTypeImpersonation},
		{"romance", ScamTypeRomance},
		{"loan", ScamTypeLoan},
		{"safe", ScamTypeSafe},
		{"정상", ScamTypeSafe},
		{"gibberish", ScamTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, MapScamTypeLabel(tt.label))
		})
	}
}

func TestWarningMessage(t *testing.T) {
	for _, scamType := range []ScamType{
		ScamTypeInvestment, ScamTypeUsedTrade, ScamTypePhishing,
		ScamTypeVoicePhishing, ScamTypeImpersonation, ScamTypeRomance, ScamTypeLoan,
	} {
		assert.NotEmpty(t, WarningMessage(scamType), "scam type %s should carry a warning", scamType)
	}

	assert.Empty(t, WarningMessage(ScamTypeUnknown))
	assert.Empty(t, WarningMessage(ScamTypeSafe))
}
