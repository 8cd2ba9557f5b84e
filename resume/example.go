package resume

// Example 返回内置示例简历。
func Example() *Resume {
	return &Resume{
		Name:        "John Doe",
		Contact:     "Email: lorem.ipsum@example.com ❖ Phone: (+00) 12345-6789 ❖ Location: Somewhere, Earth",
		GitHubURL:   "https://github.com/lorem-ipsum",
		LinkedInURL: "https://www.linkedin.com/in/lorem-ipsum-12345",
		Education: []Education{
			{
				Institution: "Lorem Ipsum University",
				Degree:      "Bachelor's in Applied Sciences",
				Date:        "Jan. 2010 - Dec. 2014",
				Description: "Completed a thesis on the optimization of systems using advanced algorithms and AI models. " +
					"Published papers demonstrating innovative solutions for data analysis and system improvements.",
			},
			{
				Institution: "Dolor Sit Amet Institute",
				Degree:      "Master's in Computer Engineering",
				Date:        "Jan. 2015 - Dec. 2017",
				Description: "Specialized in embedded systems and automation. Developed projects integrating hardware and software solutions " +
					"for efficient process management and technological advancements.",
			},
			{
				Institution: "Consectetur Academy",
				Degree:      "Full-Stack Web Development Certification",
				Date:        "Jan. 2023 - Dec. 2023",
				Description: "Focused on web technologies including Node.js, React, and Vue.js. Built scalable applications with modern front-end " +
					"frameworks and RESTful APIs, ensuring performance and usability.",
			},
		},
		Experience: []Experience{
			{
				Company: "Tech Solutions Ltd.",
				Role:    "Software Developer",
				Period:  "Jan. 2018 – Dec. 2020\nTech City, World",
				Details: []string{
					"Implemented automation scripts to reduce manual workload by 40%, improving team efficiency.",
					"Developed and maintained client applications using Python and JavaScript frameworks.",
					"Collaborated with cross-functional teams to integrate new features and troubleshoot issues.",
				},
			},
			{
				Company: "InnovateX Research Lab",
				Role:    "Research Assistant",
				Period:  "Jan. 2021 – Dec. 2022\nInnovation Hub, Techland",
				Details: []string{
					"Conducted research on machine learning models for predictive analysis.",
					"Designed and simulated real-world solutions using MATLAB and Simulink.",
					"Published reports detailing findings and implementation strategies for automated systems.",
				},
			},
		},
		ProjectsVolunteering: []Project{
			{Year: "2019", Description: "Led a community project creating IoT-based devices to monitor air quality."},
			{Year: "2021", Description: "Participated in an open-source project enhancing accessibility tools for visually impaired individuals."},
		},
		Certifications: "AWS Certified Solutions Architect; Python Programmer Professional",
		Skills: "Proficiency in Python, JavaScript, React, Node.js; Experience with Docker and Kubernetes; " +
			"Strong understanding of Agile methodologies; Familiarity with CI/CD pipelines and cloud technologies.",
		Interests: "Open-source contributions; AI in healthcare; Mountain biking; Playing guitar.",
	}
}
