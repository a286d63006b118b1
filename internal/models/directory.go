package models

type Specialization struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

type Doctor struct {
	ID               string `bson:"_id" json:"id"`
	SpecializationID string `bson:"specialization_id" json:"specialization_id"`
	Name             string `bson:"name" json:"name"`
	Degree           string `bson:"degree" json:"degree"`
	Details          string `bson:"details" json:"details"`
	ProfileImage     string `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
}
