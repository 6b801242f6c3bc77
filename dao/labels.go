// api/dao/labels.go
package dao

import (
	"encoding/json"
	"time"

	helper_util "github.com/atlasgrc/atlas/api/util/helper"
)

// Node labels and relationship types for the mirrored collections.
const (
	LabelUser         = "User"
	LabelOrganization = "Organization"
	LabelNotification = "Notification"
	LabelTicket       = "SupportTicket"
	LabelMessage      = "TicketMessage"

	RelMemberOf   = "MEMBER_OF"
	RelHasMessage = "HAS_MESSAGE"
)

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func boolProp(props map[string]interface{}, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}

func int64Prop(props map[string]interface{}, key string) int64 {
	if v, ok := props[key].(int64); ok {
		return v
	}
	return 0
}

// timeProp normalizes stored RFC3339 strings into time.Time; zero time on
// absence or parse failure.
func timeProp(props map[string]interface{}, key string) time.Time {
	s := stringProp(props, key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// timePtrProp handles optional timestamps: absent, empty or unparseable
// values come back nil.
func timePtrProp(props map[string]interface{}, key string) *time.Time {
	t, err := helper_util.ParseNullableTime(props[key])
	if err != nil || t == nil || t.IsZero() {
		return nil
	}
	return t
}

func stringSliceProp(props map[string]interface{}, key string) []string {
	raw, ok := props[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func jsonProp(props map[string]interface{}, key string, out interface{}) {
	s := stringProp(props, key)
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), out)
}
