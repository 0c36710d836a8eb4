package main

func (cli *commandLine) printSeed() error {
	users, err := cli.seeder.Users()
	if err != nil {
		return err
	}
	ds := cli.seeder.SchoolData()
	chats, messages := cli.seeder.ChatData()

	var msgCount int
	for _, msgs := range messages {
		msgCount += len(msgs)
	}

	logger.Printf("users: %d", len(users))
	logger.Printf("courses: %d, assignments: %d, grades: %d, attendance: %d, exams: %d, events: %d, fees: %d",
		len(ds.Courses), len(ds.Assignments), len(ds.Grades), len(ds.Attendance), len(ds.Exams), len(ds.Events), len(ds.Fees))
	logger.Printf("chats: %d, messages: %d", len(chats), msgCount)
	return nil
}
