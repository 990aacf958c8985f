package resqtalk

// Request and response shapes for the backend HTTP surface. The backend
// itself is an external collaborator; these mirror its wire contract.

// generateRequest is the body of POST /generate/text.
type generateRequest struct {
	FrontendTools string `json:"frontendTools"`
	Prompt        string `json:"prompt"`
}

// VoiceResponse is the JSON reply of POST /generate/voice: the transcribed
// prompt's full (non-streamed) reply text.
type VoiceResponse struct {
	Response string `json:"response"`
}

type modeResponse struct {
	Mode Mode `json:"mode"`
}

type privilegesResponse struct {
	IsGodMode bool `json:"isGodMode"`
}

type systemPromptResponse struct {
	Prompt string `json:"prompt"`
}

type systemPromptRequest struct {
	Key    string `json:"key"`
	Prompt string `json:"prompt"`
}

type memoriesResponse struct {
	Memories []string `json:"memories"`
}

type disastersResponse struct {
	Disasters []string `json:"disasters"`
}

type alertsResponse struct {
	Alerts []string `json:"alerts"`
}

// Member describes one person in the onboarding record.
type Member struct {
	Name        string   `json:"name"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	Allergies   []string `json:"allergies"`
	Medications []string `json:"medications"`
}

// Dependent is a household member tied to the primary user.
type Dependent struct {
	Member
	Relationship string `json:"relationship"`
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OnboardingData is the record captured at first launch and stored by the
// backend. UserDetails returns the same shape.
type OnboardingData struct {
	PrimaryUserDetails   Member      `json:"primaryUserDetails"`
	DependentUserDetails []Dependent `json:"dependentUserDetails"`
	Location             Location    `json:"location"`
	SelectedDisasters    []string    `json:"selectedDisasters"`
}

// DisasterContext pins the conversation to one disaster and phase
// (e.g. "earthquake" / "during") so the backend can specialize prompts.
type DisasterContext struct {
	Disaster string `json:"disaster"`
	Phase    string `json:"phase"`
}
