package ast

// Kind names the three interface document kinds by their file extension
type Kind string

const (
	KindMessage Kind = "msg"
	KindService Kind = "srv"
	KindAction  Kind = "action"
)

// Extension returns the file extension for the kind, including the dot
func (k Kind) Extension() string {
	return "." + string(k)
}

// Member is a message field. Default holds the canonical text of the
// default value, or nil when none was declared.
type Member struct {
	Name    string
	Type    MemberType
	Default *string
}

// Constant is a named constant value of a message
type Constant struct {
	Name  string
	Type  ConstantType
	Value string
}

// Message is a parsed .msg document or one block of a service or action
type Message struct {
	Package   string
	Name      string
	Members   []Member
	Constants []Constant
}

// Service is a parsed .srv document
type Service struct {
	Package  string
	Name     string
	Request  Message
	Response Message
}

// Action is a parsed .action document
type Action struct {
	Package  string
	Name     string
	Goal     Message
	Result   Message
	Feedback Message
}

// Interface is any parsed interface document
type Interface interface {
	Kind() Kind
	// FullName is the ROS type name, e.g. std_msgs/msg/Header
	FullName() string
	// Messages returns the message blocks of the document in file order
	Messages() []*Message
	isInterface()
}

func (m *Message) Kind() Kind           { return KindMessage }
func (m *Message) FullName() string     { return fullName(m.Package, KindMessage, m.Name) }
func (m *Message) Messages() []*Message { return []*Message{m} }

func (s *Service) Kind() Kind       { return KindService }
func (s *Service) FullName() string { return fullName(s.Package, KindService, s.Name) }
func (s *Service) Messages() []*Message {
	return []*Message{&s.Request, &s.Response}
}

func (a *Action) Kind() Kind       { return KindAction }
func (a *Action) FullName() string { return fullName(a.Package, KindAction, a.Name) }
func (a *Action) Messages() []*Message {
	return []*Message{&a.Goal, &a.Result, &a.Feedback}
}

func (*Message) isInterface() {}
func (*Service) isInterface() {}
func (*Action) isInterface()  {}

// Member returns the field with the given name
func (m *Message) Member(name string) (Member, bool) {
	for _, f := range m.Members {
		if f.Name == name {
			return f, true
		}
	}
	return Member{}, false
}

// Constant returns the constant with the given name
func (m *Message) Constant(name string) (Constant, bool) {
	for _, c := range m.Constants {
		if c.Name == name {
			return c, true
		}
	}
	return Constant{}, false
}

func fullName(pkg string, kind Kind, name string) string {
	return pkg + "/" + string(kind) + "/" + name
}
