package core

import (
	"strings"
)

// typeRule pairs a substring predicate with the category it implies. Rules
// are evaluated top-down; the first match wins.
type typeRule struct {
	cues     []string
	scamType ScamType
}

// reasonTypeRules infer a category from accumulated rule-evidence reason
// strings. Voice-phishing cues are checked first: institutional impersonation
// over the phone outranks the generic categories its reasons also mention.
var reasonTypeRules = []typeRule{
	{[]string{"보이스피싱", "voice phishing", "검찰", "금융감독원", "수사", "safe account", "안전계좌"}, ScamTypeVoicePhishing},
	{[]string{"투자", "investment", "수익", "코인", "주식"}, ScamTypeInvestment},
	{[]string{"중고", "used trade", "직거래", "택배"}, ScamTypeUsedTrade},
	{[]string{"피싱", "phishing", "url", "링크", "link"}, ScamTypePhishing},
	{[]string{"사칭", "impersonation", "가족", "지인"}, ScamTypeImpersonation},
	{[]string{"대출", "loan"}, ScamTypeLoan},
}

// InferScamType maps rule-evidence reasons to a categorical scam type using
// the fixed priority order above. Unmatched reasons yield ScamTypeUnknown.
func InferScamType(reasons []string) ScamType {
	joined := strings.ToLower(strings.Join(reasons, " "))
	for _, rule := range reasonTypeRules {
		for _, cue := range rule.cues {
			if strings.Contains(joined, cue) {
				return rule.scamType
			}
		}
	}
	return ScamTypeUnknown
}

// labelTypeRules map the oracle's free-text scam-type label to the enum.
// The voice cue precedes the generic phishing cue because labels such as
// "보이스피싱" contain both.
var labelTypeRules = []typeRule{
	{[]string{"investment", "투자"}, ScamTypeInvestment},
	{[]string{"used", "trade", "중고"}, ScamTypeUsedTrade},
	{[]string{"voice", "보이스"}, ScamTypeVoicePhishing},
	{[]string{"phishing", "피싱"}, ScamTypePhishing},
	{[]string{"impersonation", "사칭"}, ScamTypeImpersonation},
	{[]string{"romance", "로맨스"}, ScamTypeRomance},
	{[]string{"loan", "대출"}, ScamTypeLoan},
	{[]string{"safe", "안전", "정상"}, ScamTypeSafe},
}

// MapScamTypeLabel converts a free-text label from the generative oracle into
// the categorical enum by substring containment, first match wins.
func MapScamTypeLabel(label string) ScamType {
	lowered := strings.ToLower(strings.TrimSpace(label))
	if lowered == "" {
		return ScamTypeUnknown
	}
	for _, rule := range labelTypeRules {
		for _, cue := range rule.cues {
			if strings.Contains(lowered, cue) {
				return rule.scamType
			}
		}
	}
	return ScamTypeUnknown
}

// warningTemplates hold the user-facing warning per category.
var warningTemplates = map[ScamType]string{
	ScamTypeInvestment:    "고수익 보장을 내세우는 투자 권유는 사기일 가능성이 높습니다. 송금 전 금융감독원에 등록된 업체인지 확인하세요.",
	ScamTypeUsedTrade:     "중고거래 선입금을 요구하는 메시지입니다. 안전결제 링크가 가짜일 수 있으니 직거래 또는 공식 플랫폼을 이용하세요.",
	ScamTypePhishing:      "출처가 불분명한 링크가 포함된 메시지입니다. 링크를 클릭하지 말고 개인정보를 입력하지 마세요.",
	ScamTypeVoicePhishing: "수사기관이나 금융기관을 사칭하는 보이스피싱이 의심됩니다. 기관은 전화나 메시지로 송금을 요구하지 않습니다.",
	ScamTypeImpersonation: "가족이나 지인을 사칭해 급하게 돈을 요구하는 수법이 의심됩니다. 반드시 본인에게 직접 전화로 확인하세요.",
	ScamTypeRomance:       "온라인에서 만난 상대가 금전을 요구한다면 로맨스 스캠일 수 있습니다. 송금하지 마세요.",
	ScamTypeLoan:          "정식 금융기관은 선입금이나 앱 설치를 요구하지 않습니다. 대출 권유 메시지의 연락처로 회신하지 마세요.",
}

// WarningMessage returns the templated user-facing warning for a category.
// Unknown and safe categories carry no warning.
func WarningMessage(scamType ScamType) string {
	return warningTemplates[scamType]
}
